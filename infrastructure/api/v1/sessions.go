package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/segalloc"
	"github.com/helixml/segalloc/application/service"
	"github.com/helixml/segalloc/domain/allocation"
	"github.com/helixml/segalloc/infrastructure/api/jsonapi"
	"github.com/helixml/segalloc/infrastructure/api/middleware"
	"github.com/helixml/segalloc/infrastructure/api/v1/dto"
	"github.com/helixml/segalloc/internal/log"
)

// smallBodyLimit bounds bodies of pick and command requests.
const smallBodyLimit = 4 << 10

// SessionsRouter handles interactive allocation sessions.
type SessionsRouter struct {
	client *segalloc.Client
	logger *slog.Logger
}

// NewSessionsRouter creates a SessionsRouter.
func NewSessionsRouter(client *segalloc.Client) *SessionsRouter {
	return &SessionsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for session endpoints.
func (r *SessionsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Route("/{id}", func(sr chi.Router) {
		sr.Get("/", r.Get)
		sr.Delete("/", r.Delete)
		sr.Post("/pick", r.Pick)
		sr.Post("/commands", r.Command)
		sr.Post("/commit", r.Commit)
		sr.Post("/reset", r.ResetAll)
		sr.Post("/segments/{segment_id}/reset", r.ResetOne)
		sr.Get("/report", r.Report)
	})

	return router
}

// List handles GET /api/v1/sessions.
func (r *SessionsRouter) List(w http.ResponseWriter, req *http.Request) {
	doc := jsonapi.NewListResponse(dto.SessionSummaries(r.client.Sessions.List()))
	doc.Meta = &jsonapi.Meta{
		"total_count": r.client.Sessions.Len(),
		"limit":       r.client.SessionLimit(),
	}
	middleware.WriteJSONAPI(w, http.StatusOK, doc)
}

// Create handles POST /api/v1/sessions.
func (r *SessionsRouter) Create(w http.ResponseWriter, req *http.Request) {
	var body dto.CreateSessionRequest
	if err := decodeRequest(w, req, r.client.MaxUploadBytes()+maxJSONOverhead, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	session, err := r.client.Sessions.Create(req.Context(), body.Params())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSONAPI(w, http.StatusCreated, jsonapi.NewSingleResponse(dto.SessionResource(session)))
}

// Get handles GET /api/v1/sessions/{id}.
func (r *SessionsRouter) Get(w http.ResponseWriter, req *http.Request) {
	session, ok := r.session(w, req)
	if !ok {
		return
	}
	middleware.WriteJSONAPI(w, http.StatusOK, jsonapi.NewSingleResponse(dto.SessionResource(session)))
}

// Delete handles DELETE /api/v1/sessions/{id}.
func (r *SessionsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	if err := r.client.Sessions.Delete(chi.URLParam(req, "id")); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pick handles POST /api/v1/sessions/{id}/pick.
func (r *SessionsRouter) Pick(w http.ResponseWriter, req *http.Request) {
	session, ok := r.session(w, req)
	if !ok {
		return
	}
	var body dto.PickRequest
	if err := decodeRequest(w, req, smallBodyLimit, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	r.respond(w, req, session)(session.Pick(body.SegmentID))
}

// Command handles POST /api/v1/sessions/{id}/commands.
func (r *SessionsRouter) Command(w http.ResponseWriter, req *http.Request) {
	session, ok := r.session(w, req)
	if !ok {
		return
	}
	var body dto.CommandRequest
	if err := decodeRequest(w, req, smallBodyLimit, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	cmd, err := allocation.ParseCommand(body.Command)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	r.respond(w, req, session)(session.Dispatch(cmd))
}

// Commit handles POST /api/v1/sessions/{id}/commit.
func (r *SessionsRouter) Commit(w http.ResponseWriter, req *http.Request) {
	session, ok := r.session(w, req)
	if !ok {
		return
	}
	r.respond(w, req, session)(session.Commit())
}

// ResetOne handles POST /api/v1/sessions/{id}/segments/{segment_id}/reset.
func (r *SessionsRouter) ResetOne(w http.ResponseWriter, req *http.Request) {
	session, ok := r.session(w, req)
	if !ok {
		return
	}
	segmentID, err := intParam(req, "segment_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	r.respond(w, req, session)(session.ResetOne(segmentID))
}

// ResetAll handles POST /api/v1/sessions/{id}/reset.
func (r *SessionsRouter) ResetAll(w http.ResponseWriter, req *http.Request) {
	session, ok := r.session(w, req)
	if !ok {
		return
	}
	r.respond(w, req, session)(session.ResetAll(), nil)
}

// Report handles GET /api/v1/sessions/{id}/report?format=json|yaml.
func (r *SessionsRouter) Report(w http.ResponseWriter, req *http.Request) {
	session, ok := r.session(w, req)
	if !ok {
		return
	}
	format, err := service.ParseFormat(req.URL.Query().Get("format"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if err := service.Encode(w, session.Report(), format); err != nil {
		r.logger.Error("encode report", slog.String("session_id", session.ID()), slog.Any("error", err))
	}
}

func (r *SessionsRouter) session(w http.ResponseWriter, req *http.Request) (*service.Session, bool) {
	session, err := r.client.Sessions.Get(chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return nil, false
	}
	return session, true
}

// respond writes the outcome of a mutating session call.
func (r *SessionsRouter) respond(w http.ResponseWriter, req *http.Request, session *service.Session) func(allocation.Changes, error) {
	return func(changes allocation.Changes, err error) {
		logger := r.logger
		if id := log.RequestID(req.Context()); id != "" {
			logger = logger.With(slog.String("request_id", id))
		}
		if err != nil {
			middleware.WriteError(w, req, err, logger.With(slog.String("session_id", session.ID())))
			return
		}
		middleware.WriteJSON(w, http.StatusOK, dto.NewChangesResponse(session, changes))
	}
}
