package v1_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/helixml/segalloc"
	"github.com/helixml/segalloc/internal/log"
	v1 "github.com/helixml/segalloc/infrastructure/api/v1"
	"github.com/helixml/segalloc/infrastructure/api/v1/dto"
)

const wordsPhones = `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 3
tiers? <exists>
size = 2
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
`

func newTestClient(t *testing.T, opts ...segalloc.Option) *segalloc.Client {
	t.Helper()
	tmpDir := t.TempDir()
	opts = append([]segalloc.Option{
		segalloc.WithDataDir(tmpDir),
		segalloc.WithLogger(log.Discard().Slog()),
	}, opts...)
	client, err := segalloc.New(opts...)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func serve(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type resourceDoc struct {
	Data struct {
		Type       string          `json:"type"`
		ID         string          `json:"id"`
		Attributes json.RawMessage `json:"attributes"`
	} `json:"data"`
}

type errorDoc struct {
	Errors []struct {
		Status string `json:"status"`
		Title  string `json:"title"`
		Source *struct {
			Pointer string `json:"pointer"`
		} `json:"source"`
	} `json:"errors"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestDocumentsRouter_UploadJSON(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewDocumentsRouter(client).Routes()

	w := serve(t, routes, http.MethodPost, "/", dto.UploadDocumentRequest{Name: "a.TextGrid", Content: wordsPhones})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	doc := decode[resourceDoc](t, w)
	assert.Equal(t, dto.DocumentType, doc.Data.Type)
	var attrs dto.DocumentAttributes
	require.NoError(t, json.Unmarshal(doc.Data.Attributes, &attrs))
	assert.Equal(t, "a.TextGrid", attrs.Name)
	assert.Equal(t, []string{"words", "phones"}, attrs.TierNames)

	w = serve(t, routes, http.MethodGet, "/"+doc.Data.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ooTextFile")

	w = serve(t, routes, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_count":1`)

	w = serve(t, routes, http.MethodDelete, "/"+doc.Data.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(t, routes, http.MethodGet, "/"+doc.Data.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func uploadFile(t *testing.T, h http.Handler, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestDocumentsRouter_UploadMultipart(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewDocumentsRouter(client).Routes()

	w := uploadFile(t, routes, "upload.TextGrid", []byte(wordsPhones))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "upload.TextGrid")
}

func TestDocumentsRouter_UploadInvalidUTF8(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewDocumentsRouter(client).Routes()

	data := append([]byte(wordsPhones), 0xC3, 0x28, 0xFF, '\n')
	w := uploadFile(t, routes, "broken.TextGrid", data)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	errs := decode[errorDoc](t, w)
	require.NotEmpty(t, errs.Errors)
	assert.Equal(t, "File format is not supported!", errs.Errors[0].Title)

	w = serve(t, routes, http.MethodGet, "/", nil)
	assert.Contains(t, w.Body.String(), `"total_count":0`)
}

func TestDocumentsRouter_UploadErrors(t *testing.T) {
	client := newTestClient(t, segalloc.WithMaxUploadBytes(64))
	routes := v1.NewDocumentsRouter(client).Routes()

	w := serve(t, routes, http.MethodPost, "/", dto.UploadDocumentRequest{Name: "a.TextGrid"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode[errorDoc](t, w)
	require.NotEmpty(t, errs.Errors)
	require.NotNil(t, errs.Errors[0].Source)
	assert.Equal(t, "/content", errs.Errors[0].Source.Pointer)

	w = serve(t, routes, http.MethodPost, "/", dto.UploadDocumentRequest{Name: "a.TextGrid", Content: wordsPhones})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(t, routes, http.MethodPost, "/", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, routes, http.MethodGet, "/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func newSessionRoutes(t *testing.T) (*segalloc.Client, chi.Router, string) {
	t.Helper()
	client := newTestClient(t)
	routes := v1.NewSessionsRouter(client).Routes()

	w := serve(t, routes, http.MethodPost, "/", dto.CreateSessionRequest{
		Name:    "a.TextGrid",
		Content: wordsPhones,
		TierA:   "words",
		TierB:   "phones",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decode[resourceDoc](t, w)
	assert.Equal(t, dto.SessionType, doc.Data.Type)
	return client, routes, doc.Data.ID
}

func TestSessionsRouter_CreateAndGet(t *testing.T) {
	_, routes, id := newSessionRoutes(t)

	w := serve(t, routes, http.MethodGet, "/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := decode[resourceDoc](t, w)

	var attrs dto.SessionAttributes
	require.NoError(t, json.Unmarshal(doc.Data.Attributes, &attrs))
	assert.Equal(t, "words", attrs.Shortest)
	assert.Len(t, attrs.Segments, 5)

	w = serve(t, routes, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)
}

func TestSessionsRouter_CreateFromDocument(t *testing.T) {
	client := newTestClient(t)
	saved, err := client.Documents.Upload(t.Context(), "a.TextGrid", []byte(wordsPhones))
	require.NoError(t, err)

	routes := v1.NewSessionsRouter(client).Routes()
	w := serve(t, routes, http.MethodPost, "/", dto.CreateSessionRequest{
		DocumentID: saved.ID(),
		TierA:      "phones",
		TierB:      "words",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"shortest":"words"`)
}

func TestSessionsRouter_CreateErrors(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewSessionsRouter(client).Routes()

	tests := []struct {
		name string
		body dto.CreateSessionRequest
		want int
	}{
		{"same tiers", dto.CreateSessionRequest{Content: wordsPhones, TierA: "words", TierB: "words"}, http.StatusUnprocessableEntity},
		{"missing content", dto.CreateSessionRequest{TierA: "words", TierB: "phones"}, http.StatusUnprocessableEntity},
		{"unknown tier", dto.CreateSessionRequest{Content: wordsPhones, TierA: "words", TierB: "syllables"}, http.StatusBadRequest},
		{"unknown document", dto.CreateSessionRequest{DocumentID: 99, TierA: "words", TierB: "phones"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, routes, http.MethodPost, "/", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestSessionsRouter_PickCommitReport(t *testing.T) {
	_, routes, id := newSessionRoutes(t)

	w := serve(t, routes, http.MethodPost, "/"+id+"/pick", map[string]int{"segment_id": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	changes := decode[dto.ChangesResponse](t, w)
	assert.Equal(t, []int{0}, changes.Changed)
	require.NotNil(t, changes.Anchor)
	assert.Equal(t, 0, *changes.Anchor)

	w = serve(t, routes, http.MethodPost, "/"+id+"/pick", map[string]int{"segment_id": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(t, routes, http.MethodPost, "/"+id+"/commit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	changes = decode[dto.ChangesResponse](t, w)
	assert.Equal(t, []int{0, 2}, changes.Changed)
	assert.Empty(t, changes.Gathered)
	assert.False(t, changes.SelectionActive)

	w = serve(t, routes, http.MethodGet, "/"+id+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"hello"`)

	w = serve(t, routes, http.MethodGet, "/"+id+"/report?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report map[string]any
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "words", report["tier_a"])

	w = serve(t, routes, http.MethodGet, "/"+id+"/report?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, routes, http.MethodPost, "/"+id+"/segments/2/reset", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	changes = decode[dto.ChangesResponse](t, w)
	assert.Equal(t, []int{0, 2}, changes.Changed)

	w = serve(t, routes, http.MethodPost, "/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.ChangesResponse](t, w).Changed)
}

func TestSessionsRouter_PickMiss(t *testing.T) {
	_, routes, id := newSessionRoutes(t)

	w := serve(t, routes, http.MethodPost, "/"+id+"/pick", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	changes := decode[dto.ChangesResponse](t, w)
	assert.Empty(t, changes.Changed)
	assert.Nil(t, changes.Anchor)

	w = serve(t, routes, http.MethodPost, "/"+id+"/pick", map[string]int{"segment_id": 42})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionsRouter_Commands(t *testing.T) {
	_, routes, id := newSessionRoutes(t)

	w := serve(t, routes, http.MethodPost, "/"+id+"/commands", dto.CommandRequest{Command: "right"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	changes := decode[dto.ChangesResponse](t, w)
	require.NotNil(t, changes.Cursor)
	assert.Equal(t, 0, *changes.Cursor)

	w = serve(t, routes, http.MethodPost, "/"+id+"/commands", dto.CommandRequest{Command: "select"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{0}, decode[dto.ChangesResponse](t, w).Gathered)

	w = serve(t, routes, http.MethodPost, "/"+id+"/commands", dto.CommandRequest{Command: "commit"})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = serve(t, routes, http.MethodPost, "/"+id+"/commands", dto.CommandRequest{Command: "jump"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, routes, http.MethodPost, "/"+id+"/commands", dto.CommandRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSessionsRouter_Delete(t *testing.T) {
	client, routes, id := newSessionRoutes(t)

	w := serve(t, routes, http.MethodDelete, "/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, client.Sessions.Len())

	for _, target := range []string{"/" + id, "/" + id + "/report"} {
		w = serve(t, routes, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
	}
	w = serve(t, routes, http.MethodDelete, "/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "errors"))
}
