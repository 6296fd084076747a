package api

import (
	"encoding/json"
	"testing"
)

func TestFlexInt64Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want int64
	}{
		{"number", `42`, 42},
		{"quoted number", `"42"`, 42},
		{"zero", `0`, 0},
		{"negative", `-7`, -7},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"garbage string", `"lots"`, 0},
		{"float", `3.5`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexInt64
			if err := json.Unmarshal([]byte(tt.json), &f); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.json, err)
			}
			if f.Int() != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.json, f.Int(), tt.want)
			}
		})
	}
}

func TestFlexInt64Marshal(t *testing.T) {
	b, err := json.Marshal(FlexInt64(123))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(b) != "123" {
		t.Errorf("Marshal = %s, want 123", b)
	}
}

// Counters decoded from strings re-encode as numbers.
func TestFlexInt64RoundTrip(t *testing.T) {
	var stats InstanceStats
	if err := json.Unmarshal([]byte(`{"user_count":"1500","status_count":80000,"domain_count":"12"}`), &stats); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	b, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	want := `{"user_count":1500,"status_count":80000,"domain_count":12}`
	if string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}
}

func TestAdminAccountRecord(t *testing.T) {
	last := "2026-08-01"

	t.Run("nested account wins", func(t *testing.T) {
		a := AdminAccount{
			ID:            "1",
			Username:      "outer",
			StatusesCount: 5,
			Account: &Account{
				ID:            "1",
				Username:      "inner",
				StatusesCount: 99,
				LastStatusAt:  &last,
			},
		}

		record := a.Record()
		if record.Username != "inner" {
			t.Errorf("Username = %q, want inner", record.Username)
		}
		if record.StatusesCount.Int() != 99 {
			t.Errorf("StatusesCount = %d, want 99", record.StatusesCount.Int())
		}
	})

	t.Run("flat record fallback", func(t *testing.T) {
		a := AdminAccount{
			ID:            "2",
			Username:      "flat",
			StatusesCount: 7,
			LastStatusAt:  &last,
		}

		record := a.Record()
		if record.Username != "flat" {
			t.Errorf("Username = %q, want flat", record.Username)
		}
		if record.StatusesCount.Int() != 7 {
			t.Errorf("StatusesCount = %d, want 7", record.StatusesCount.Int())
		}
		if record.LastStatusAt == nil || *record.LastStatusAt != last {
			t.Errorf("LastStatusAt = %v, want %q", record.LastStatusAt, last)
		}
	})
}

func TestAdminAccountLocal(t *testing.T) {
	domain := "remote.example"

	if !(AdminAccount{Username: "a"}).Local() {
		t.Error("account without domain should be local")
	}
	if (AdminAccount{Username: "b", Domain: &domain}).Local() {
		t.Error("account with domain should be remote")
	}
}

func TestActivityWeekStart(t *testing.T) {
	week := ActivityWeek{Week: 1755475200} // 2025-08-18 00:00 UTC
	start := week.WeekStart()
	if start.IsZero() {
		t.Fatal("WeekStart returned zero time")
	}
	if start.Unix() != 1755475200 {
		t.Errorf("WeekStart unix = %d, want 1755475200", start.Unix())
	}

	if !(ActivityWeek{}).WeekStart().IsZero() {
		t.Error("zero week should return zero time")
	}
}
