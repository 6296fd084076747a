// Package report gathers the four analysis datasets from a Mastodon
// instance and renders them as a combined report.
//
// Every section is optional: endpoints that are unreachable or return no
// data leave their section nil, and renderers show an explicit
// "unavailable" notice instead of omitting the section.
package report

import (
	"time"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/api"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/stats"
)

// Report is the combined analysis result of one run.
//
// The JSON encoding carries exactly the top-level keys instance, activity,
// accounts, timeline, and generated_at; unavailable sections encode as
// null rather than disappearing.
type Report struct {
	Instance *api.Instance        `json:"instance" yaml:"instance"`
	Activity []api.ActivityWeek   `json:"activity" yaml:"activity"`
	Accounts *stats.AccountStats  `json:"accounts" yaml:"accounts"`
	Timeline *stats.TimelineStats `json:"timeline" yaml:"timeline"`

	// GeneratedAt is the report creation timestamp (ISO-8601 in JSON).
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// InstanceURL is the analyzed instance, carried for the text header
	// but not part of the machine-readable payload.
	InstanceURL string `json:"-" yaml:"-"`
}

// ActivityWeeksShown is how many of the reported activity weeks the text
// renderer prints. The API returns twelve; the report shows the most
// recent three.
const ActivityWeeksShown = 3
