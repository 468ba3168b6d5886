package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/helixml/segalloc"
	"github.com/helixml/segalloc/domain/document"
	"github.com/helixml/segalloc/infrastructure/api"
	"github.com/helixml/segalloc/infrastructure/persistence"
	"github.com/helixml/segalloc/internal/database"
	"github.com/helixml/segalloc/internal/log"
)

const wordsPhones = `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 3
tiers? <exists>
size = 3
item []:
    item [1]:
        class = "IntervalTier"
        name = "words"
        xmin = 0
        xmax = 3
        intervals: size = 2
        intervals [1]:
            xmin = 0
            xmax = 1.5
            text = "hello"
        intervals [2]:
            xmin = 1.5
            xmax = 3
            text = "world"
    item [2]:
        class = "IntervalTier"
        name = "phones"
        xmin = 0
        xmax = 3
        intervals: size = 3
        intervals [1]:
            xmin = 0
            xmax = 1
            text = "h"
        intervals [2]:
            xmin = 1
            xmax = 2
            text = "e"
        intervals [3]:
            xmin = 2
            xmax = 3
            text = "w"
    item [3]:
        class = "TextTier"
        name = "events"
        xmin = 0
        xmax = 3
        points: size = 1
        points [1]:
            number = 1.2
            mark = "click"
`

// TestServer wraps the API server for e2e testing.
type TestServer struct {
	t          *testing.T
	client     *segalloc.Client
	db         database.Database
	httpServer *httptest.Server

	// Store for direct DB manipulation in tests.
	documentStore persistence.DocumentStore
}

// NewTestServer creates a test server backed by a SQLite document library
// and a separate DB handle for seeding.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	ctx := context.Background()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	logger := log.Discard().Slog()

	client, err := segalloc.New(
		segalloc.WithSQLite(dbPath),
		segalloc.WithDataDir(tmpDir),
		segalloc.WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("create segalloc client: %v", err)
	}

	db, err := database.NewDatabase(ctx, "sqlite:///"+dbPath, logger)
	if err != nil {
		t.Fatalf("create database: %v", err)
	}

	server := api.NewServer(":0", logger)
	server.Router().Mount("/", api.NewAPIServer(client, []string{"*"}).Handler())

	ts := &TestServer{
		t:             t,
		client:        client,
		db:            db,
		httpServer:    httptest.NewServer(server.Router()),
		documentStore: persistence.NewDocumentStore(db),
	}

	t.Cleanup(func() {
		ts.Close()
	})

	return ts
}

// URL returns the base URL of the test server.
func (ts *TestServer) URL() string {
	return ts.httpServer.URL
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	ts.httpServer.Close()
	_ = ts.client.Close()
	_ = ts.db.Close()
}

// GET performs a GET request and returns the response.
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	resp, err := http.Get(ts.URL() + path)
	if err != nil {
		ts.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with JSON body and returns the response.
func (ts *TestServer) POST(path string, body any) *http.Response {
	ts.t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(jsonBody)
	}
	resp, err := http.Post(ts.URL()+path, "application/json", reader)
	if err != nil {
		ts.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// DELETE performs a DELETE request and returns the response.
func (ts *TestServer) DELETE(path string) *http.Response {
	ts.t.Helper()
	req, err := http.NewRequest(http.MethodDelete, ts.URL()+path, nil)
	if err != nil {
		ts.t.Fatalf("create DELETE request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("DELETE %s: %v", path, err)
	}
	return resp
}

// DecodeJSON decodes the response body as JSON into v.
func (ts *TestServer) DecodeJSON(resp *http.Response, v any) {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		ts.t.Fatalf("decode response: %v", err)
	}
}

// ReadBody reads and returns the response body as a string.
func (ts *TestServer) ReadBody(resp *http.Response) string {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read body: %v", err)
	}
	return string(body)
}

// CreateDocument stores an annotation file in the database directly.
func (ts *TestServer) CreateDocument(name, content string, tiers []string) document.Document {
	ts.t.Helper()
	saved, err := ts.documentStore.Save(context.Background(), document.NewDocument(name, content, tiers))
	if err != nil {
		ts.t.Fatalf("save document: %v", err)
	}
	return saved
}

// resource is the JSON:API envelope of a single resource.
type resource[A any] struct {
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes A      `json:"attributes"`
	} `json:"data"`
}

// changes is the body of every mutating session call.
type changes struct {
	Changed         []int `json:"changed"`
	Gathered        []int `json:"gathered"`
	Anchor          *int  `json:"anchor"`
	Cursor          *int  `json:"cursor"`
	SelectionActive bool  `json:"selection_active"`
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, want, body)
	}
}
