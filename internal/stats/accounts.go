// Package stats reduces fetched API records into the report's aggregate
// statistics. All aggregation is pure: records in, counters out.
package stats

import (
	"sort"
	"time"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/api"
)

// PostCountBuckets lists the post-count buckets in display order.
// Boundaries are inclusive on the upper end.
var PostCountBuckets = []string{"0", "1-10", "11-50", "51-100", "101-500", "500+"}

// TopPosterCount is the length cap of the top-poster ranking.
const TopPosterCount = 10

// AccountStats holds the aggregated account statistics for one run.
type AccountStats struct {
	Total    int `json:"total" yaml:"total"`
	Local    int `json:"local" yaml:"local"`
	Remote   int `json:"remote" yaml:"remote"`
	Active30 int `json:"active_30d" yaml:"active_30d"`
	Active90 int `json:"active_90d" yaml:"active_90d"`
	Inactive int `json:"inactive" yaml:"inactive"`

	WithPosts    int `json:"with_posts" yaml:"with_posts"`
	WithoutPosts int `json:"without_posts" yaml:"without_posts"`

	// ByPostCount maps each bucket of PostCountBuckets to the number of
	// accounts whose post count falls into it.
	ByPostCount map[string]int `json:"by_post_count" yaml:"by_post_count"`

	// TopPosters are the ten busiest accounts, most posts first.
	TopPosters []TopPoster `json:"top_posters" yaml:"top_posters"`
}

// TopPoster is one entry of the top-poster ranking.
type TopPoster struct {
	Username string `json:"username" yaml:"username"`
	Posts    int64  `json:"posts" yaml:"posts"`

	// LastActive is the raw last_status_at value; empty when the account
	// never posted.
	LastActive string `json:"last_active" yaml:"last_active"`
}

// AnalyzeAccounts reduces the admin roster into AccountStats.
//
// Activity classification intentionally keeps the historical three-way
// split: Active30 is a superset flag (any account active within 30 days),
// while Active90 and Inactive partition the set; every account lands in
// exactly one of them. Missing or unparsable timestamps count as inactive.
//
// Returns nil when the roster is empty, signaling "data unavailable".
func AnalyzeAccounts(accounts []api.AdminAccount, now time.Time) *AccountStats {
	if len(accounts) == 0 {
		return nil
	}

	thirtyDaysAgo := now.AddDate(0, 0, -30)
	ninetyDaysAgo := now.AddDate(0, 0, -90)

	result := &AccountStats{
		Total:       len(accounts),
		ByPostCount: make(map[string]int, len(PostCountBuckets)),
	}
	for _, bucket := range PostCountBuckets {
		result.ByPostCount[bucket] = 0
	}

	ranking := make([]TopPoster, 0, len(accounts))

	for _, acct := range accounts {
		if acct.Local() {
			result.Local++
		} else {
			result.Remote++
		}

		record := acct.Record()

		if lastActive, ok := parseLastStatusAt(record.LastStatusAt); ok {
			if lastActive.After(thirtyDaysAgo) {
				result.Active30++
			}
			if lastActive.After(ninetyDaysAgo) {
				result.Active90++
			} else {
				result.Inactive++
			}
		} else {
			result.Inactive++
		}

		posts := record.StatusesCount.Int()
		if posts > 0 {
			result.WithPosts++
		} else {
			result.WithoutPosts++
		}
		result.ByPostCount[postCountBucket(posts)]++

		lastActive := ""
		if record.LastStatusAt != nil {
			lastActive = *record.LastStatusAt
		}
		ranking = append(ranking, TopPoster{
			Username:   acct.Username,
			Posts:      posts,
			LastActive: lastActive,
		})
	}

	// Stable sort keeps the original fetch order among equal post counts.
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Posts > ranking[j].Posts
	})
	if len(ranking) > TopPosterCount {
		ranking = ranking[:TopPosterCount]
	}
	result.TopPosters = ranking

	return result
}

// postCountBucket classifies a post count into its display bucket.
func postCountBucket(posts int64) string {
	switch {
	case posts == 0:
		return "0"
	case posts <= 10:
		return "1-10"
	case posts <= 50:
		return "11-50"
	case posts <= 100:
		return "51-100"
	case posts <= 500:
		return "101-500"
	default:
		return "500+"
	}
}

// lastStatusLayouts are the timestamp formats the API is known to serve
// for last_status_at, from most to least specific.
var lastStatusLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseLastStatusAt parses a last_status_at value. Absent or unparsable
// values report ok=false; the caller classifies those accounts inactive.
func parseLastStatusAt(value *string) (time.Time, bool) {
	if value == nil || *value == "" {
		return time.Time{}, false
	}
	for _, layout := range lastStatusLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseLastStatusAt parses a raw last_status_at value for display.
// ok is false for absent or unparsable values.
func ParseLastStatusAt(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	return parseLastStatusAt(&value)
}
