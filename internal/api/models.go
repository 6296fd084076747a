package api

import (
	"bytes"
	"strconv"
	"time"
)

// FlexInt64 is an integer counter that decodes from either a JSON number
// or a JSON string. Mastodon serves activity and instance counters as
// strings on some versions and as numbers on others. Values that cannot
// be parsed decode to the zero value instead of failing the whole payload.
type FlexInt64 int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt64(n)
	return nil
}

// MarshalJSON implements json.Marshaler. Counters always re-encode as
// plain JSON numbers regardless of how the API served them.
func (f FlexInt64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(f), 10)), nil
}

// Int returns the counter as a plain int64.
func (f FlexInt64) Int() int64 {
	return int64(f)
}

// Instance is the response of /api/v1/instance.
type Instance struct {
	URI              string        `json:"uri"`
	Title            string        `json:"title"`
	Version          string        `json:"version"`
	ShortDescription string        `json:"short_description"`
	Stats            InstanceStats `json:"stats"`
}

// InstanceStats holds the aggregate counters reported by the instance.
type InstanceStats struct {
	UserCount   FlexInt64 `json:"user_count"`
	StatusCount FlexInt64 `json:"status_count"`
	DomainCount FlexInt64 `json:"domain_count"`
}

// ActivityWeek is one entry of /api/v1/instance/activity: counters for a
// single week, keyed by the unix timestamp of the week's first day.
type ActivityWeek struct {
	Week          FlexInt64 `json:"week"`
	Statuses      FlexInt64 `json:"statuses"`
	Logins        FlexInt64 `json:"logins"`
	Registrations FlexInt64 `json:"registrations"`
}

// WeekStart returns the start of the week as a time. The zero time is
// returned when the week timestamp was absent or unparsable.
func (w ActivityWeek) WeekStart() time.Time {
	if w.Week == 0 {
		return time.Time{}
	}
	return time.Unix(int64(w.Week), 0).UTC()
}

// Account is the public representation of an account. Only the fields the
// aggregation needs are decoded; everything else the API sends is ignored.
type Account struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Domain        *string   `json:"domain"`
	StatusesCount FlexInt64 `json:"statuses_count"`
	LastStatusAt  *string   `json:"last_status_at"`
}

// AdminAccount is one entry of /api/v1/admin/accounts. Depending on the
// server version the activity fields live either on the admin record
// itself or on the nested public account object.
type AdminAccount struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Domain        *string   `json:"domain"`
	StatusesCount FlexInt64 `json:"statuses_count"`
	LastStatusAt  *string   `json:"last_status_at"`
	Account       *Account  `json:"account"`
}

// Record returns the account data to aggregate: the nested public account
// when the server includes one, otherwise the top-level fields.
func (a AdminAccount) Record() Account {
	if a.Account != nil {
		return *a.Account
	}
	return Account{
		ID:            a.ID,
		Username:      a.Username,
		Domain:        a.Domain,
		StatusesCount: a.StatusesCount,
		LastStatusAt:  a.LastStatusAt,
	}
}

// Local reports whether the account is hosted on the analyzed instance.
// Remote accounts carry their home domain; local accounts have none.
func (a AdminAccount) Local() bool {
	return a.Domain == nil
}

// Status is one post from /api/v1/timelines/public. Optional markers are
// pointers or slices so that "absent" is distinguishable from "set".
type Status struct {
	ID               string            `json:"id"`
	Account          StatusAccount     `json:"account"`
	SpoilerText      string            `json:"spoiler_text"`
	InReplyToID      *string           `json:"in_reply_to_id"`
	Reblog           *StatusRef        `json:"reblog"`
	MediaAttachments []MediaAttachment `json:"media_attachments"`
}

// StatusAccount identifies the author of a status.
type StatusAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// StatusRef is a minimal reference to another status (the boosted one).
type StatusRef struct {
	ID string `json:"id"`
}

// MediaAttachment is a minimal media attachment record; only presence
// matters for the timeline statistics.
type MediaAttachment struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}
