// Package v1 provides the v1 API routes.
package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/segalloc/infrastructure/api/middleware"
	"github.com/helixml/segalloc/infrastructure/api/v1/dto"
)

// maxJSONOverhead is added to the upload limit for JSON-wrapped content.
const maxJSONOverhead = 64 << 10

// decodeRequest reads a JSON body of at most limit bytes into v and validates
// it. An empty body leaves v at its zero value.
func decodeRequest(w http.ResponseWriter, req *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, req.Body, limit)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return middleware.NewAPIError(http.StatusBadRequest, "invalid JSON body", err)
	}
	return dto.Validate(v)
}

func int64Param(req *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, name), 10, 64)
	if err != nil {
		return 0, middleware.NewAPIError(http.StatusBadRequest, "invalid "+name, err)
	}
	return id, nil
}

func intParam(req *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(req, name))
	if err != nil {
		return 0, middleware.NewAPIError(http.StatusBadRequest, "invalid "+name, err)
	}
	return id, nil
}
