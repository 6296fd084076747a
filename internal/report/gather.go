package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/api"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/stats"
)

// Gatherer pulls the four datasets from the API client and reduces them
// into a Report. Fetches run strictly sequentially; each failure degrades
// its own section to nil and never aborts the run.
type Gatherer struct {
	client *api.Client
	log    zerolog.Logger

	pageLimit     int
	timelineLimit int
}

// NewGatherer creates a Gatherer for the given client.
func NewGatherer(client *api.Client, log zerolog.Logger) *Gatherer {
	return &Gatherer{
		client:        client,
		log:           log,
		pageLimit:     api.DefaultPageLimit,
		timelineLimit: 100,
	}
}

// SetPageLimit overrides the admin roster page size.
func (g *Gatherer) SetPageLimit(limit int) {
	if limit > 0 {
		g.pageLimit = limit
	}
}

// SetTimelineLimit overrides the timeline sample size.
func (g *Gatherer) SetTimelineLimit(limit int) {
	if limit > 0 {
		g.timelineLimit = limit
	}
}

// Gather runs the full pipeline and returns the combined report.
// It never returns an error: sections whose data could not be fetched
// stay nil, and the renderers mark them unavailable.
func (g *Gatherer) Gather(ctx context.Context) *Report {
	result := &Report{
		InstanceURL: g.client.BaseURL(),
		GeneratedAt: time.Now(),
	}

	g.log.Info().Msg("collecting instance information")
	instance, err := g.client.Instance(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("instance information unavailable")
	} else {
		result.Instance = instance
	}

	g.log.Info().Msg("collecting activity statistics")
	activity, err := g.client.Activity(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("activity statistics unavailable")
	} else {
		result.Activity = activity
	}

	g.log.Info().Msg("analyzing accounts")
	accounts, err := g.client.FetchAllAccounts(ctx, g.pageLimit)
	if err != nil {
		g.log.Warn().Err(err).Msg("account roster unavailable")
	}
	result.Accounts = stats.AnalyzeAccounts(accounts, time.Now())
	if result.Accounts == nil && err == nil {
		g.log.Warn().Msg("no account data available; an admin token is required")
	}

	g.log.Info().Msg("analyzing local timeline")
	statuses, err := g.client.LocalTimeline(ctx, g.timelineLimit)
	if err != nil {
		g.log.Warn().Err(err).Msg("local timeline unavailable")
	}
	result.Timeline = stats.AnalyzeTimeline(statuses)

	return result
}
