package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/api"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/stats"
)

const (
	ruleWidth       = 70
	descriptionsMax = 60
)

// Text renders the report as the fixed multi-section plain-text format.
// Sections whose data is unavailable render an explicit notice so readers
// can tell "nothing there" from "not fetched".
func Text(r *Report) string {
	var b strings.Builder

	heavyRule := strings.Repeat("=", ruleWidth)
	lightRule := strings.Repeat("-", ruleWidth)

	fmt.Fprintln(&b, heavyRule)
	fmt.Fprintf(&b, "MASTODON INSTANCE ANALYSIS: %s\n", r.InstanceURL)
	fmt.Fprintln(&b, heavyRule)
	fmt.Fprintln(&b)

	writeInstanceSection(&b, lightRule, r.Instance)
	writeActivitySection(&b, lightRule, r.Activity)
	writeAccountSection(&b, lightRule, r.Accounts)
	writeTimelineSection(&b, lightRule, r.Timeline)

	fmt.Fprintln(&b, heavyRule)
	fmt.Fprintf(&b, "Report generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, heavyRule)

	return b.String()
}

func writeInstanceSection(b *strings.Builder, rule string, info *api.Instance) {
	fmt.Fprintln(b, "INSTANCE INFORMATION")
	fmt.Fprintln(b, rule)
	if info == nil {
		fmt.Fprintln(b, "Instance information unavailable.")
		fmt.Fprintln(b)
		return
	}

	fmt.Fprintf(b, "Name:        %s\n", orNA(info.Title))
	fmt.Fprintf(b, "Version:     %s\n", orNA(info.Version))
	fmt.Fprintf(b, "Description: %s\n", truncate(info.ShortDescription, descriptionsMax))
	fmt.Fprintf(b, "Users:       %s\n", humanize.Comma(info.Stats.UserCount.Int()))
	fmt.Fprintf(b, "Posts:       %s\n", humanize.Comma(info.Stats.StatusCount.Int()))
	fmt.Fprintf(b, "Domains:     %s\n", humanize.Comma(info.Stats.DomainCount.Int()))
	fmt.Fprintln(b)
}

func writeActivitySection(b *strings.Builder, rule string, activity []api.ActivityWeek) {
	fmt.Fprintln(b, "ACTIVITY (12 WEEKS)")
	fmt.Fprintln(b, rule)
	if len(activity) == 0 {
		fmt.Fprintln(b, "Activity statistics unavailable.")
		fmt.Fprintln(b)
		return
	}

	weeks := activity
	if len(weeks) > ActivityWeeksShown {
		weeks = weeks[:ActivityWeeksShown]
	}
	for _, week := range weeks {
		fmt.Fprintf(b, "%s: %s logins, %s posts, %s registrations\n",
			weekLabel(week),
			humanize.Comma(week.Logins.Int()),
			humanize.Comma(week.Statuses.Int()),
			humanize.Comma(week.Registrations.Int()))
	}
	fmt.Fprintln(b)
}

func writeAccountSection(b *strings.Builder, rule string, accounts *stats.AccountStats) {
	fmt.Fprintln(b, "ACCOUNT STATISTICS")
	fmt.Fprintln(b, rule)
	if accounts == nil {
		fmt.Fprintln(b, "No account data available (admin token required).")
		fmt.Fprintln(b)
		return
	}

	fmt.Fprintf(b, "Total:            %s\n", humanize.Comma(int64(accounts.Total)))
	fmt.Fprintf(b, "Local:            %s\n", humanize.Comma(int64(accounts.Local)))
	fmt.Fprintf(b, "Remote:           %s\n", humanize.Comma(int64(accounts.Remote)))
	fmt.Fprintf(b, "Active (30 days): %s\n", humanize.Comma(int64(accounts.Active30)))
	fmt.Fprintf(b, "Active (90 days): %s\n", humanize.Comma(int64(accounts.Active90)))
	fmt.Fprintf(b, "Inactive:         %s\n", humanize.Comma(int64(accounts.Inactive)))
	fmt.Fprintf(b, "With posts:       %s\n", humanize.Comma(int64(accounts.WithPosts)))
	fmt.Fprintf(b, "Without posts:    %s\n", humanize.Comma(int64(accounts.WithoutPosts)))
	fmt.Fprintln(b)

	fmt.Fprintln(b, "POSTS PER ACCOUNT")
	fmt.Fprintln(b, rule)
	for _, bucket := range stats.PostCountBuckets {
		fmt.Fprintf(b, "%10s posts: %s accounts\n",
			bucket, humanize.Comma(int64(accounts.ByPostCount[bucket])))
	}
	fmt.Fprintln(b)

	if len(accounts.TopPosters) > 0 {
		fmt.Fprintln(b, "TOP 10 POSTERS")
		fmt.Fprintln(b, rule)
		for i, poster := range accounts.TopPosters {
			fmt.Fprintf(b, "%2d. @%-20s %8s posts (last: %s)\n",
				i+1, poster.Username,
				humanize.Comma(poster.Posts),
				lastActiveLabel(poster.LastActive))
		}
		fmt.Fprintln(b)
	}
}

func writeTimelineSection(b *strings.Builder, rule string, timeline *stats.TimelineStats) {
	if timeline == nil {
		fmt.Fprintln(b, "LOCAL TIMELINE")
		fmt.Fprintln(b, rule)
		fmt.Fprintln(b, "Timeline unavailable (auth token may be required).")
		fmt.Fprintln(b)
		return
	}

	fmt.Fprintf(b, "LOCAL TIMELINE (last %d posts)\n", timeline.TotalStatuses)
	fmt.Fprintln(b, rule)
	fmt.Fprintf(b, "Total statuses:   %s\n", humanize.Comma(int64(timeline.TotalStatuses)))
	fmt.Fprintf(b, "Unique authors:   %s\n", humanize.Comma(int64(timeline.UniqueAuthors)))
	fmt.Fprintf(b, "With media:       %s\n", humanize.Comma(int64(timeline.WithMedia)))
	fmt.Fprintf(b, "With CW:          %s\n", humanize.Comma(int64(timeline.WithCW)))
	fmt.Fprintf(b, "Replies:          %s\n", humanize.Comma(int64(timeline.Replies)))
	fmt.Fprintf(b, "Boosts:           %s\n", humanize.Comma(int64(timeline.Boosts)))
	fmt.Fprintln(b)
}

// weekLabel converts a week's unix timestamp into a calendar week label
// like "2026-W34 (17.08.)". An unparsable timestamp falls back to the raw
// value.
func weekLabel(week api.ActivityWeek) string {
	start := week.WeekStart()
	if start.IsZero() {
		return strconv.FormatInt(week.Week.Int(), 10)
	}
	year, isoWeek := start.ISOWeek()
	return fmt.Sprintf("%d-W%02d (%02d.%02d.)", year, isoWeek, start.Day(), int(start.Month()))
}

// lastActiveLabel formats a top poster's last activity as a plain date.
// Unparsable values pass through raw; accounts without posts show "never".
func lastActiveLabel(raw string) string {
	if raw == "" {
		return "never"
	}
	if t, ok := stats.ParseLastStatusAt(raw); ok {
		return t.Format("2006-01-02")
	}
	return raw
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if s == "" {
		return "N/A"
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
