package stats

import "github.com/sozialwelten/MastodonInstanceAnalyzer/internal/api"

// TimelineStats holds the aggregated statistics of one local timeline
// sample.
type TimelineStats struct {
	TotalStatuses int `json:"total_statuses" yaml:"total_statuses"`
	UniqueAuthors int `json:"unique_authors" yaml:"unique_authors"`
	WithMedia     int `json:"with_media" yaml:"with_media"`
	WithCW        int `json:"with_cw" yaml:"with_cw"`
	Replies       int `json:"replies" yaml:"replies"`
	Boosts        int `json:"boosts" yaml:"boosts"`
}

// AnalyzeTimeline reduces a batch of local public statuses into
// TimelineStats. An empty batch returns nil: an instance whose timeline
// yields nothing is indistinguishable from one that denied access, so
// both collapse to the "unavailable" sentinel.
func AnalyzeTimeline(statuses []api.Status) *TimelineStats {
	if len(statuses) == 0 {
		return nil
	}

	result := &TimelineStats{TotalStatuses: len(statuses)}

	authors := make(map[string]struct{}, len(statuses))
	for _, status := range statuses {
		authors[status.Account.ID] = struct{}{}

		if len(status.MediaAttachments) > 0 {
			result.WithMedia++
		}
		if status.SpoilerText != "" {
			result.WithCW++
		}
		if status.InReplyToID != nil && *status.InReplyToID != "" {
			result.Replies++
		}
		if status.Reblog != nil {
			result.Boosts++
		}
	}
	result.UniqueAuthors = len(authors)

	return result
}
