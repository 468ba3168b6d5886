package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/helixml/segalloc/domain/allocation"
	"github.com/helixml/segalloc/domain/link"
	"github.com/helixml/segalloc/domain/palette"
	"github.com/helixml/segalloc/domain/segment"
	"github.com/helixml/segalloc/domain/textgrid"
)

// SessionParams describes the file and tiers a session allocates over.
// Content is used as-is; DocumentID is resolved by Sessions.Create when
// Content is empty.
type SessionParams struct {
	DocumentID int64
	Name       string
	Content    string
	TierA      string
	TierB      string
	Scope      *float64
}

// Session owns one parsed file and the allocation engine driving it.
// Methods serialise on an internal mutex so the engine sees one event at a
// time.
type Session struct {
	id         string
	documentID int64
	name       string
	scope      float64
	createdAt  time.Time

	result  textgrid.Result
	set     *segment.Set
	links   link.Table
	palette palette.Palette

	mu       sync.Mutex
	engine   *allocation.Engine
	logger   *slog.Logger
	lastUsed atomic.Int64
}

// NewSession parses params.Content and prepares an engine over TierA and
// TierB. The returned error matches textgrid.ErrTierNotFound when either tier
// is missing from the file.
func NewSession(params SessionParams, defaultScope float64, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if params.Content == "" {
		return nil, ErrEmptyContent
	}
	scope := defaultScope
	if params.Scope != nil {
		scope = *params.Scope
	}
	if scope < 0 {
		return nil, fmt.Errorf("link scope must not be negative: %v", scope)
	}

	id := uuid.NewString()
	logger = logger.With(slog.String("session_id", id))

	result, err := textgrid.NewParser(textgrid.WithLogger(logger)).Parse(params.Content, params.TierA, params.TierB)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	set, err := segment.Build(result.Tiers(), params.TierA, params.TierB)
	if err != nil {
		return nil, fmt.Errorf("build segments: %w", err)
	}
	set.AssignColorIDs()
	pal := palette.Assign(len(set.ShortestSegments()))
	links := link.Build(set.Layer(set.TierA()), set.Layer(set.TierB()), scope)

	engine, err := allocation.NewEngine(set, pal, allocation.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	logger.Info("session created",
		slog.String("tier_a", set.TierA()),
		slog.String("tier_b", set.TierB()),
		slog.String("shortest", set.Shortest()),
		slog.Int("segments", set.Len()),
		slog.Int("links", links.Len()),
		slog.Int("diagnostics", len(result.Diagnostics())),
	)

	session := &Session{
		id:         id,
		documentID: params.DocumentID,
		name:       params.Name,
		scope:      scope,
		createdAt:  time.Now().UTC(),
		result:     result,
		set:        set,
		links:      links,
		palette:    pal,
		engine:     engine,
		logger:     logger,
	}
	session.touch(session.createdAt)
	return session, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// DocumentID returns the stored document the session was opened from, or 0.
func (s *Session) DocumentID() int64 { return s.documentID }

// Name returns the file name the session was opened with.
func (s *Session) Name() string { return s.name }

// Scope returns the link tolerance.
func (s *Session) Scope() float64 { return s.scope }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastUsed returns when the session was created or last fetched from
// Sessions.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load()).UTC()
}

func (s *Session) touch(t time.Time) { s.lastUsed.Store(t.UnixNano()) }

// Links returns the advisory link table.
func (s *Session) Links() link.Table { return s.links }

// Pick applies a pointer pick. A nil id is a miss.
func (s *Session) Pick(id *int) (allocation.Changes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == nil {
		return s.observe(s.engine.HandlePick(0, false))
	}
	return s.observe(s.engine.HandlePick(*id, true))
}

// Dispatch applies a keyboard command.
func (s *Session) Dispatch(cmd allocation.Command) (allocation.Changes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observe(s.engine.Dispatch(cmd))
}

// Commit turns the gathered selection into an allocation.
func (s *Session) Commit() (allocation.Changes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observe(s.engine.Commit())
}

// ResetOne clears the allocation of segment id.
func (s *Session) ResetOne(id int) (allocation.Changes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observe(s.engine.ResetOne(id))
}

// ResetAll clears every allocation and the selection.
func (s *Session) ResetAll() allocation.Changes {
	s.mu.Lock()
	defer s.mu.Unlock()
	changes := s.engine.ResetAll()
	s.logger.Debug("session reset", slog.Int("changed", len(changes)))
	return changes
}

// observe logs invariant violations, which indicate a defect rather than a
// user mistake.
func (s *Session) observe(changes allocation.Changes, err error) (allocation.Changes, error) {
	if errors.Is(err, allocation.ErrInvariantViolation) {
		s.logger.Error("allocation invariant violated", slog.Any("error", err))
	}
	return changes, err
}

// SegmentView is the render state of one segment.
type SegmentView struct {
	ID       int     `json:"id" yaml:"id"`
	Layer    string  `json:"layer" yaml:"layer"`
	Upper    bool    `json:"upper" yaml:"upper"`
	Start    float64 `json:"start" yaml:"start"`
	End      float64 `json:"end" yaml:"end"`
	Label    string  `json:"label" yaml:"label"`
	Group    []int   `json:"group" yaml:"group,flow"`
	Links    []int   `json:"links" yaml:"links,flow"`
	Gathered bool    `json:"gathered" yaml:"gathered"`
	Cursor   bool    `json:"cursor" yaml:"cursor"`
	Color    string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// Snapshot is a consistent view of a session.
type Snapshot struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name,omitempty" yaml:"name,omitempty"`
	DocumentID      int64         `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	TierA           string        `json:"tier_a" yaml:"tier_a"`
	TierB           string        `json:"tier_b" yaml:"tier_b"`
	Shortest        string        `json:"shortest" yaml:"shortest"`
	Longest         string        `json:"longest" yaml:"longest"`
	Scope           float64       `json:"scope" yaml:"scope"`
	TierNames       []string      `json:"tier_names" yaml:"tier_names"`
	Diagnostics     []string      `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Segments        []SegmentView `json:"segments" yaml:"segments"`
	Links           []link.Pair   `json:"links" yaml:"links"`
	Gathered        []int         `json:"gathered" yaml:"gathered,flow"`
	Anchor          *int          `json:"anchor" yaml:"anchor"`
	Cursor          *int          `json:"cursor" yaml:"cursor"`
	SelectionActive bool          `json:"selection_active" yaml:"selection_active"`
}

// Snapshot returns the current state of every segment.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:              s.id,
		Name:            s.name,
		DocumentID:      s.documentID,
		TierA:           s.set.TierA(),
		TierB:           s.set.TierB(),
		Shortest:        s.set.Shortest(),
		Longest:         s.set.Longest(),
		Scope:           s.scope,
		TierNames:       s.result.Names(),
		Links:           s.links.Pairs(),
		Gathered:        s.engine.Gathered(),
		SelectionActive: s.engine.SelectionActive(),
	}
	for _, d := range s.result.Diagnostics() {
		snap.Diagnostics = append(snap.Diagnostics, d.Error())
	}
	if id, ok := s.engine.Anchor(); ok {
		snap.Anchor = &id
	}
	if id, ok := s.engine.Cursor(); ok {
		snap.Cursor = &id
	}

	states := s.engine.States()
	snap.Segments = make([]SegmentView, 0, len(states))
	for _, st := range states {
		seg, _ := s.set.Get(st.ID)
		view := SegmentView{
			ID:       st.ID,
			Layer:    seg.Layer(),
			Upper:    seg.IsUpperLayer(),
			Start:    seg.Start(),
			End:      seg.End(),
			Label:    seg.Label(),
			Group:    st.Group,
			Links:    s.links.Links(st.ID),
			Gathered: st.Gathered,
			Cursor:   st.Cursor,
		}
		if view.Group == nil {
			view.Group = []int{}
		}
		if view.Links == nil {
			view.Links = []int{}
		}
		if st.Colored {
			view.Color = st.Color.Hex()
		}
		snap.Segments = append(snap.Segments, view)
	}
	return snap
}
