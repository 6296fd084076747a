package stats

import (
	"testing"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/api"
)

func TestAnalyzeTimelineEmpty(t *testing.T) {
	if got := AnalyzeTimeline(nil); got != nil {
		t.Errorf("AnalyzeTimeline(nil) = %+v, want nil", got)
	}
	if got := AnalyzeTimeline([]api.Status{}); got != nil {
		t.Errorf("AnalyzeTimeline(empty) = %+v, want nil", got)
	}
}

func TestAnalyzeTimelineCounts(t *testing.T) {
	reply := "12345"
	statuses := []api.Status{
		{
			ID:      "1",
			Account: api.StatusAccount{ID: "a1", Username: "alice"},
			MediaAttachments: []api.MediaAttachment{
				{ID: "m1", Type: "image"},
			},
		},
		{
			ID:          "2",
			Account:     api.StatusAccount{ID: "a1", Username: "alice"},
			SpoilerText: "long post",
			InReplyToID: &reply,
		},
		{
			ID:      "3",
			Account: api.StatusAccount{ID: "a2", Username: "bob"},
			Reblog:  &api.StatusRef{ID: "999"},
		},
		{
			ID:      "4",
			Account: api.StatusAccount{ID: "a3", Username: "carol"},
		},
	}

	result := AnalyzeTimeline(statuses)
	if result == nil {
		t.Fatal("AnalyzeTimeline returned nil")
	}

	if result.TotalStatuses != 4 {
		t.Errorf("TotalStatuses = %d, want 4", result.TotalStatuses)
	}
	if result.UniqueAuthors != 3 {
		t.Errorf("UniqueAuthors = %d, want 3", result.UniqueAuthors)
	}
	if result.WithMedia != 1 {
		t.Errorf("WithMedia = %d, want 1", result.WithMedia)
	}
	if result.WithCW != 1 {
		t.Errorf("WithCW = %d, want 1", result.WithCW)
	}
	if result.Replies != 1 {
		t.Errorf("Replies = %d, want 1", result.Replies)
	}
	if result.Boosts != 1 {
		t.Errorf("Boosts = %d, want 1", result.Boosts)
	}
}

// An empty in_reply_to_id string is not a reply, and empty media slices do
// not count as media posts.
func TestAnalyzeTimelineEmptyMarkers(t *testing.T) {
	empty := ""
	statuses := []api.Status{
		{
			ID:               "1",
			Account:          api.StatusAccount{ID: "a1"},
			InReplyToID:      &empty,
			MediaAttachments: []api.MediaAttachment{},
		},
	}

	result := AnalyzeTimeline(statuses)
	if result == nil {
		t.Fatal("AnalyzeTimeline returned nil")
	}

	if result.Replies != 0 {
		t.Errorf("Replies = %d, want 0", result.Replies)
	}
	if result.WithMedia != 0 {
		t.Errorf("WithMedia = %d, want 0", result.WithMedia)
	}
}
