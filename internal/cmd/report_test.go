package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/output"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/report"
)

func testReport() *report.Report {
	return &report.Report{
		InstanceURL: "https://example.social",
		GeneratedAt: time.Date(2026, 8, 20, 15, 4, 5, 0, time.UTC),
	}
}

func TestWriteReportText(t *testing.T) {
	var buf bytes.Buffer

	err := writeReport(&buf, func() error { return nil }, output.FormatText, testReport())
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if !strings.Contains(buf.String(), "MASTODON INSTANCE ANALYSIS: https://example.social") {
		t.Error("text report header missing")
	}
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer

	err := writeReport(&buf, func() error { return nil }, output.FormatJSON, testReport())
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if !strings.Contains(buf.String(), `"generated_at"`) {
		t.Error("JSON report missing generated_at")
	}
}

// A close failure on the destination is a write failure.
func TestWriteReportCloseError(t *testing.T) {
	var buf bytes.Buffer
	closeErr := errors.New("disk full")

	err := writeReport(&buf, func() error { return closeErr }, output.FormatText, testReport())
	if !errors.Is(err, closeErr) {
		t.Errorf("writeReport error = %v, want %v", err, closeErr)
	}
}
