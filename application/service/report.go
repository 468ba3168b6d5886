package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helixml/segalloc/domain/segment"
)

// Format is a report encoding.
type Format string

// Report formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a format name to a Format. An empty name means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// ReportSegment is one segment in a report.
type ReportSegment struct {
	ID    int     `json:"id" yaml:"id"`
	Layer string  `json:"layer" yaml:"layer"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Label string  `json:"label" yaml:"label"`
}

// ReportAllocation is one committed allocation.
type ReportAllocation struct {
	Anchor  ReportSegment   `json:"anchor" yaml:"anchor"`
	Color   string          `json:"color" yaml:"color"`
	Members []ReportSegment `json:"members" yaml:"members"`
}

// Report lists the committed allocations of a session.
type Report struct {
	Session     string             `json:"session" yaml:"session"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	TierA       string             `json:"tier_a" yaml:"tier_a"`
	TierB       string             `json:"tier_b" yaml:"tier_b"`
	Shortest    string             `json:"shortest" yaml:"shortest"`
	Scope       float64            `json:"scope" yaml:"scope"`
	GeneratedAt time.Time          `json:"generated_at" yaml:"generated_at"`
	Allocations []ReportAllocation `json:"allocations" yaml:"allocations"`
}

// Report builds the allocation report of the session.
func (s *Session) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Report{
		Session:     s.id,
		Name:        s.name,
		TierA:       s.set.TierA(),
		TierB:       s.set.TierB(),
		Shortest:    s.set.Shortest(),
		Scope:       s.scope,
		GeneratedAt: time.Now().UTC(),
		Allocations: []ReportAllocation{},
	}
	for _, a := range s.engine.Allocations() {
		anchor, _ := s.set.Get(a.Anchor)
		entry := ReportAllocation{
			Anchor:  reportSegment(anchor),
			Color:   a.Color.Hex(),
			Members: make([]ReportSegment, 0, len(a.Members)),
		}
		for _, id := range a.Members {
			if member, ok := s.set.Get(id); ok {
				entry.Members = append(entry.Members, reportSegment(member))
			}
		}
		r.Allocations = append(r.Allocations, entry)
	}
	return r
}

func reportSegment(s *segment.Segment) ReportSegment {
	return ReportSegment{
		ID:    s.ID(),
		Layer: s.Layer(),
		Start: s.Start(),
		End:   s.End(),
		Label: s.Label(),
	}
}

// Encode writes v to w in format f.
func Encode(w io.Writer, v any, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
