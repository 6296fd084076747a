package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestClientInstance(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/instance" {
			t.Errorf("path = %q, want /api/v1/instance", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{
			"uri": "example.social",
			"title": "Example",
			"version": "4.2.1",
			"short_description": "A test instance",
			"stats": {"user_count": "150", "status_count": 9000, "domain_count": "42"}
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{Token: "secret"})

	info, err := client.Instance(context.Background())
	if err != nil {
		t.Fatalf("Instance() error: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
	if info.Title != "Example" {
		t.Errorf("Title = %q, want Example", info.Title)
	}
	if info.Stats.UserCount.Int() != 150 {
		t.Errorf("UserCount = %d, want 150", info.Stats.UserCount.Int())
	}
	if info.Stats.StatusCount.Int() != 9000 {
		t.Errorf("StatusCount = %d, want 9000", info.Stats.StatusCount.Int())
	}
}

func TestClientNoTokenNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("Authorization = %q, want empty", auth)
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	if _, err := client.Instance(context.Background()); err != nil {
		t.Fatalf("Instance() error: %v", err)
	}
}

func TestClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"This API requires an authenticated user"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	if _, err := client.AdminAccounts(context.Background(), 1, 100); err == nil {
		t.Fatal("AdminAccounts() expected error for 403 response")
	}
}

// A short page terminates pagination without a further request.
func TestFetchAllAccountsPagination(t *testing.T) {
	var mu sync.Mutex
	requestedPages := []string{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		mu.Lock()
		requestedPages = append(requestedPages, page)
		mu.Unlock()

		switch page {
		case "1":
			// Full page: limit entries
			fmt.Fprint(w, `[`+accountJSON("a1")+`,`+accountJSON("a2")+`]`)
		case "2":
			// Short page: pagination stops here
			fmt.Fprint(w, `[`+accountJSON("a3")+`]`)
		default:
			t.Errorf("unexpected page request: %q", page)
			fmt.Fprint(w, `[]`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})

	accounts, err := client.FetchAllAccounts(context.Background(), 2)
	if err != nil {
		t.Fatalf("FetchAllAccounts() error: %v", err)
	}

	if len(accounts) != 3 {
		t.Errorf("len(accounts) = %d, want 3", len(accounts))
	}
	if len(requestedPages) != 2 {
		t.Errorf("requested pages = %v, want exactly two requests", requestedPages)
	}

	want := []string{"a1", "a2", "a3"}
	for i, username := range want {
		if accounts[i].Username != username {
			t.Errorf("accounts[%d].Username = %q, want %q", i, accounts[i].Username, username)
		}
	}
}

// A failure after the first page keeps the accounts already fetched.
func TestFetchAllAccountsLaterPageFailure(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `[`+accountJSON("a1")+`,`+accountJSON("a2")+`]`)
		default:
			http.Error(w, `{"error":"server error"}`, http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})

	accounts, err := client.FetchAllAccounts(context.Background(), 2)
	if err != nil {
		t.Fatalf("FetchAllAccounts() error: %v, want partial result", err)
	}
	if len(accounts) != 2 {
		t.Errorf("len(accounts) = %d, want 2 from the successful page", len(accounts))
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
}

func TestFetchAllAccountsFirstPageFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})

	if _, err := client.FetchAllAccounts(context.Background(), 100); err == nil {
		t.Error("FetchAllAccounts() expected error when the first page fails")
	}
}

func TestFetchAllAccountsEmptyPage(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})

	accounts, err := client.FetchAllAccounts(context.Background(), 100)
	if err != nil {
		t.Fatalf("FetchAllAccounts() error: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("len(accounts) = %d, want 0", len(accounts))
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
}

func TestLocalTimelineParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("local") != "true" {
			t.Errorf("local = %q, want true", q.Get("local"))
		}
		if q.Get("limit") != "40" {
			t.Errorf("limit = %q, want 40", q.Get("limit"))
		}
		fmt.Fprint(w, `[{"id":"1","account":{"id":"a1","username":"alice"},"spoiler_text":"","in_reply_to_id":null,"reblog":null,"media_attachments":[]}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})

	statuses, err := client.LocalTimeline(context.Background(), 40)
	if err != nil {
		t.Fatalf("LocalTimeline() error: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("len(statuses) = %d, want 1", len(statuses))
	}
	if statuses[0].Account.Username != "alice" {
		t.Errorf("author = %q, want alice", statuses[0].Account.Username)
	}
}

// memorySnapshots is an in-memory SnapshotStore for tests.
type memorySnapshots struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: make(map[string][]byte)}
}

func (m *memorySnapshots) Put(instance, request string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[instance+"|"+request] = payload
	return nil
}

func (m *memorySnapshots) Get(instance, request string) ([]byte, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.data[instance+"|"+request]
	if !ok {
		return nil, time.Time{}, fmt.Errorf("no snapshot for %s %s", instance, request)
	}
	return payload, time.Now(), nil
}

func TestClientRecordsSnapshots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"Example"}`)
	}))
	defer server.Close()

	snapshots := newMemorySnapshots()
	client := NewClient(server.URL, Options{Snapshots: snapshots})

	if _, err := client.Instance(context.Background()); err != nil {
		t.Fatalf("Instance() error: %v", err)
	}

	if _, _, err := snapshots.Get(server.URL, "instance"); err != nil {
		t.Errorf("snapshot not recorded: %v", err)
	}
}

func TestClientOffline(t *testing.T) {
	snapshots := newMemorySnapshots()
	snapshots.Put("https://example.social", "instance", []byte(`{"title":"Cached"}`))

	client := NewClient("https://example.social", Options{
		Snapshots: snapshots,
		Offline:   true,
	})

	info, err := client.Instance(context.Background())
	if err != nil {
		t.Fatalf("Instance() error: %v", err)
	}
	if info.Title != "Cached" {
		t.Errorf("Title = %q, want Cached", info.Title)
	}

	// A miss is an error, not a network fallback
	if _, err := client.Activity(context.Background()); err == nil {
		t.Error("Activity() expected error for missing snapshot")
	}
}

func TestClientOfflineWithoutStore(t *testing.T) {
	client := NewClient("https://example.social", Options{Offline: true})
	if _, err := client.Instance(context.Background()); err == nil {
		t.Error("Instance() expected error when offline without a snapshot store")
	}
}

func accountJSON(username string) string {
	return fmt.Sprintf(`{"id":%q,"username":%q,"domain":null,"statuses_count":10,"last_status_at":"2026-08-01"}`, username, username)
}
