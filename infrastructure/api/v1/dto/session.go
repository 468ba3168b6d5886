package dto

import (
	"time"

	"github.com/helixml/segalloc/application/service"
	"github.com/helixml/segalloc/domain/allocation"
	"github.com/helixml/segalloc/infrastructure/api/jsonapi"
)

// SessionType is the JSON:API resource type of allocation sessions.
const SessionType = "session"

// CreateSessionRequest opens a session on a stored document or on raw
// TextGrid content.
type CreateSessionRequest struct {
	DocumentID int64    `json:"document_id" validate:"omitempty,gte=1"`
	Name       string   `json:"name" validate:"max=255"`
	Content    string   `json:"content" validate:"required_without=DocumentID"`
	TierA      string   `json:"tier_a" validate:"required"`
	TierB      string   `json:"tier_b" validate:"required,nefield=TierA"`
	Scope      *float64 `json:"scope" validate:"omitempty,gte=0"`
}

// Params converts the request to service parameters.
func (r CreateSessionRequest) Params() service.SessionParams {
	return service.SessionParams{
		DocumentID: r.DocumentID,
		Name:       r.Name,
		Content:    r.Content,
		TierA:      r.TierA,
		TierB:      r.TierB,
		Scope:      r.Scope,
	}
}

// PickRequest reports the segment under the pointer. A null or missing
// segment_id is a miss.
type PickRequest struct {
	SegmentID *int `json:"segment_id" validate:"omitempty,gte=0"`
}

// CommandRequest carries one keyboard command.
type CommandRequest struct {
	Command string `json:"command" validate:"required"`
}

// SessionAttributes is a session snapshot with its creation time.
type SessionAttributes struct {
	service.Snapshot
	CreatedAt time.Time `json:"created_at"`
}

// SessionResource converts s to a resource.
func SessionResource(s *service.Session) *jsonapi.Resource {
	snap := s.Snapshot()
	return jsonapi.NewResource(SessionType, s.ID(), SessionAttributes{Snapshot: snap, CreatedAt: s.CreatedAt()})
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	Name      string    `json:"name,omitempty"`
	TierA     string    `json:"tier_a"`
	TierB     string    `json:"tier_b"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionSummaries converts sessions to list resources.
func SessionSummaries(sessions []*service.Session) []*jsonapi.Resource {
	out := make([]*jsonapi.Resource, len(sessions))
	for i, s := range sessions {
		snap := s.Snapshot()
		out[i] = jsonapi.NewResource(SessionType, s.ID(), SessionSummary{
			Name:      snap.Name,
			TierA:     snap.TierA,
			TierB:     snap.TierB,
			CreatedAt: s.CreatedAt(),
		})
	}
	return out
}

// ChangesResponse answers every mutating session call: the ids to redraw
// and the selection afterwards.
type ChangesResponse struct {
	Changed         []int `json:"changed"`
	Gathered        []int `json:"gathered"`
	Anchor          *int  `json:"anchor"`
	Cursor          *int  `json:"cursor"`
	SelectionActive bool  `json:"selection_active"`
}

// NewChangesResponse builds the response for changes applied to s.
func NewChangesResponse(s *service.Session, changes allocation.Changes) ChangesResponse {
	snap := s.Snapshot()
	changed := []int(changes)
	if changed == nil {
		changed = []int{}
	}
	gathered := snap.Gathered
	if gathered == nil {
		gathered = []int{}
	}
	return ChangesResponse{
		Changed:         changed,
		Gathered:        gathered,
		Anchor:          snap.Anchor,
		Cursor:          snap.Cursor,
		SelectionActive: snap.SelectionActive,
	}
}
