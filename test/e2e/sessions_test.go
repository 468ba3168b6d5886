package e2e_test

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"testing"
)

type segmentView struct {
	ID    int    `json:"id"`
	Layer string `json:"layer"`
	Label string `json:"label"`
	Group []int  `json:"group"`
	Links []int  `json:"links"`
	Color string `json:"color"`
}

type sessionAttributes struct {
	TierA     string        `json:"tier_a"`
	Shortest  string        `json:"shortest"`
	TierNames []string      `json:"tier_names"`
	Segments  []segmentView `json:"segments"`
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func openSession(t *testing.T, ts *TestServer, body map[string]any) string {
	t.Helper()
	resp := ts.POST("/api/v1/sessions", body)
	expectStatus(t, resp, http.StatusCreated)
	var created resource[sessionAttributes]
	ts.DecodeJSON(resp, &created)
	return created.Data.ID
}

func TestSessions_AllocationFlow(t *testing.T) {
	ts := NewTestServer(t)
	doc := ts.CreateDocument("take1.TextGrid", wordsPhones, []string{"words", "phones", "events"})

	id := openSession(t, ts, map[string]any{"document_id": doc.ID(), "tier_a": "words", "tier_b": "phones"})
	base := "/api/v1/sessions/" + id

	resp := ts.GET(base)
	expectStatus(t, resp, http.StatusOK)
	var session resource[sessionAttributes]
	ts.DecodeJSON(resp, &session)
	if session.Data.Attributes.Shortest != "words" {
		t.Fatalf("shortest = %q, want words", session.Data.Attributes.Shortest)
	}
	if len(session.Data.Attributes.Segments) != 5 {
		t.Fatalf("segments = %d, want 5", len(session.Data.Attributes.Segments))
	}
	if links := session.Data.Attributes.Segments[0].Links; !slices.Equal(links, []int{2}) {
		t.Errorf("links of hello = %v, want [2]", links)
	}

	// Pick "world" then "e" and "w", then commit.
	for _, seg := range []int{1, 3, 4} {
		resp = ts.POST(base+"/pick", map[string]int{"segment_id": seg})
		expectStatus(t, resp, http.StatusOK)
		_ = resp.Body.Close()
	}
	resp = ts.POST(base+"/commit", nil)
	expectStatus(t, resp, http.StatusOK)
	var committed changes
	ts.DecodeJSON(resp, &committed)
	if !slices.Equal(committed.Changed, []int{1, 3, 4}) {
		t.Errorf("commit changed = %v, want [1 3 4]", committed.Changed)
	}
	if committed.SelectionActive {
		t.Error("selection still active after commit")
	}

	resp = ts.GET(base)
	expectStatus(t, resp, http.StatusOK)
	ts.DecodeJSON(resp, &session)
	world := session.Data.Attributes.Segments[1]
	if !slices.Equal(world.Group, []int{3, 4}) {
		t.Errorf("world group = %v, want [3 4]", world.Group)
	}
	if world.Color == "" || session.Data.Attributes.Segments[3].Color != world.Color {
		t.Errorf("members should share the anchor colour %q", world.Color)
	}

	resp = ts.GET(base + "/report?format=yaml")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q, want application/yaml", ct)
	}
	report := ts.ReadBody(resp)
	for _, want := range []string{"label: world", "label: e", "label: w"} {
		if !contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	resp = ts.POST(base+"/reset", nil)
	expectStatus(t, resp, http.StatusOK)
	var reset changes
	ts.DecodeJSON(resp, &reset)
	if !slices.Equal(reset.Changed, []int{1, 3, 4}) {
		t.Errorf("reset changed = %v, want [1 3 4]", reset.Changed)
	}
}

func TestSessions_KeyboardCommands(t *testing.T) {
	ts := NewTestServer(t)
	id := openSession(t, ts, map[string]any{"content": wordsPhones, "tier_a": "words", "tier_b": "phones"})
	base := "/api/v1/sessions/" + id

	steps := []struct {
		command string
		cursor  int
	}{
		{"right", 0},
		{"right", 1},
		{"down", 4},
		{"left", 3},
		{"left", 2},
		{"up", 0},
	}
	for _, step := range steps {
		resp := ts.POST(base+"/commands", map[string]string{"command": step.command})
		expectStatus(t, resp, http.StatusOK)
		var got changes
		ts.DecodeJSON(resp, &got)
		if got.Cursor == nil || *got.Cursor != step.cursor {
			t.Fatalf("after %s cursor = %v, want %d", step.command, got.Cursor, step.cursor)
		}
	}

	resp := ts.POST(base+"/commands", map[string]string{"command": "select"})
	expectStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()
	resp = ts.POST(base+"/commands", map[string]string{"command": "commit"})
	expectStatus(t, resp, http.StatusConflict)
	body := ts.ReadBody(resp)
	if !contains(body, "409") {
		t.Errorf("conflict body = %s", body)
	}
}

func TestSessions_Errors(t *testing.T) {
	ts := NewTestServer(t)

	resp := ts.POST("/api/v1/sessions", map[string]any{"content": wordsPhones, "tier_a": "words", "tier_b": "syllables"})
	expectStatus(t, resp, http.StatusBadRequest)
	if body := ts.ReadBody(resp); !contains(body, "Did you provide the correct tiers?") {
		t.Errorf("body = %s", body)
	}

	resp = ts.POST("/api/v1/sessions", map[string]any{"content": wordsPhones, "tier_a": "words", "tier_b": "words"})
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	_ = resp.Body.Close()

	resp = ts.POST("/api/v1/sessions/unknown/pick", map[string]int{"segment_id": 0})
	expectStatus(t, resp, http.StatusNotFound)
	_ = resp.Body.Close()

	resp = ts.DELETE(fmt.Sprintf("/api/v1/sessions/%s", "unknown"))
	expectStatus(t, resp, http.StatusNotFound)
	_ = resp.Body.Close()
}

func TestHealth(t *testing.T) {
	ts := NewTestServer(t)
	resp := ts.GET("/health")
	expectStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()
}
