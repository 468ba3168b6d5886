package v1

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/segalloc"
	"github.com/helixml/segalloc/infrastructure/api/jsonapi"
	"github.com/helixml/segalloc/infrastructure/api/middleware"
	"github.com/helixml/segalloc/infrastructure/api/v1/dto"
)

// DocumentsRouter handles the stored TextGrid library.
type DocumentsRouter struct {
	client *segalloc.Client
	logger *slog.Logger
}

// NewDocumentsRouter creates a DocumentsRouter.
func NewDocumentsRouter(client *segalloc.Client) *DocumentsRouter {
	return &DocumentsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for document endpoints.
func (r *DocumentsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Upload)
	router.Get("/{id}", r.Get)
	router.Delete("/{id}", r.Delete)

	return router
}

// List handles GET /api/v1/documents.
func (r *DocumentsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)

	docs, err := r.client.Documents.Find(ctx, pagination.Options()...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	total, err := r.client.Documents.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(dto.DocumentResources(docs))
	doc.Meta = PaginationMeta(pagination, total)
	doc.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSONAPI(w, http.StatusOK, doc)
}

// Upload handles POST /api/v1/documents. The file is sent either as the
// "file" part of a multipart form or as a JSON {name, content} body.
func (r *DocumentsRouter) Upload(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	limit := r.client.MaxUploadBytes()

	var (
		name string
		data []byte
	)
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req.Body = http.MaxBytesReader(w, req.Body, limit+maxJSONOverhead)
		file, header, err := req.FormFile("file")
		if err != nil {
			var maxBytes *http.MaxBytesError
			if !errors.As(err, &maxBytes) {
				err = middleware.NewAPIError(http.StatusBadRequest, "missing file part", err)
			}
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		defer func() { _ = file.Close() }()
		if data, err = io.ReadAll(io.LimitReader(file, limit+1)); err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		name = header.Filename
	} else {
		var body dto.UploadDocumentRequest
		if err := decodeRequest(w, req, limit+maxJSONOverhead, &body); err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		name, data = body.Name, []byte(body.Content)
	}

	saved, err := r.client.Documents.Upload(ctx, name, data)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSONAPI(w, http.StatusCreated, jsonapi.NewSingleResponse(dto.DocumentResource(saved, false)))
}

// Get handles GET /api/v1/documents/{id}.
func (r *DocumentsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := int64Param(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	doc, err := r.client.Documents.Get(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSONAPI(w, http.StatusOK, jsonapi.NewSingleResponse(dto.DocumentResource(doc, true)))
}

// Delete handles DELETE /api/v1/documents/{id}.
func (r *DocumentsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := int64Param(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if err := r.client.Documents.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
