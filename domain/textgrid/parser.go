package textgrid

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

const (
	headerMarker    = "ooTextFile"
	sizePrefix      = "size ="
	itemListMarker  = "item []:"
	itemMarker      = "item ["
	classMarker     = "class ="
	nameMarker      = "name ="
	intervalsMarker = "intervals ["
	pointsMarker    = "points ["

	// fieldsPerRecord is the number of field units that complete a record.
	fieldsPerRecord = 3
)

// Result is the outcome of a parse. Only the requested tiers carry intervals;
// every tier name encountered is listed in Names.
type Result struct {
	tiers       Tiers
	names       []string
	declared    int
	diagnostics []error
}

// Tiers returns the retained tiers in document order.
func (r Result) Tiers() Tiers { return r.tiers }

// Names returns every tier name seen, in document order.
func (r Result) Names() []string {
	cp := make([]string, len(r.names))
	copy(cp, r.names)
	return cp
}

// Declared returns the tier count from the file header.
func (r Result) Declared() int { return r.declared }

// Diagnostics returns the non-fatal problems met while scanning. Entries are
// *MalformedRecordError or *MissingTierError.
func (r Result) Diagnostics() []error {
	cp := make([]error, len(r.diagnostics))
	copy(cp, r.diagnostics)
	return cp
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Parser scans the long TextGrid text format line by line.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts tierA and tierB from text.
//
// The returned Result is usable even when err is non-nil: it always carries
// the tier names seen so callers can offer a corrected choice. err matches
// ErrTierNotFound when either tier is absent or the header is missing.
func (p *Parser) Parse(text, tierA, tierB string) (Result, error) {
	tierA = strings.TrimSpace(tierA)
	tierB = strings.TrimSpace(tierB)
	if tierA == "" || tierB == "" {
		return Result{}, ErrTierNameRequired
	}

	result, err := p.scan(text, map[string]bool{tierA: true, tierB: true})
	if err != nil {
		return result, err
	}

	var missing []string
	for _, name := range []string{tierA, tierB} {
		if _, ok := result.tiers.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if tierA == tierB {
		return result, fmt.Errorf("%w: %q requested twice", ErrTierNotFound, tierA)
	}
	if len(missing) > 0 {
		return result, fmt.Errorf("%w: %s", ErrTierNotFound, strings.Join(missing, ", "))
	}
	return result, nil
}

// TierNames lists every tier name in text without retaining any intervals.
func (p *Parser) TierNames(text string) ([]string, error) {
	result, err := p.scan(text, nil)
	if err != nil {
		return nil, err
	}
	return result.Names(), nil
}

// Parse extracts tierA and tierB from text with a default Parser.
func Parse(text, tierA, tierB string) (Result, error) {
	return NewParser().Parse(text, tierA, tierB)
}

// TierNames lists every tier name in text with a default Parser.
func TierNames(text string) ([]string, error) {
	return NewParser().TierNames(text)
}

// scanner holds the state of one pass over a file.
type scanner struct {
	lines  []string
	active map[string]bool
	result Result
	logger *slog.Logger
}

func (p *Parser) scan(text string, active map[string]bool) (Result, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if !strings.Contains(lines[0], headerMarker) {
		return Result{}, ErrNotTextGrid
	}

	s := &scanner{lines: lines, active: active, logger: p.logger}

	i := 1
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, sizePrefix) {
			s.result.declared = parseDeclared(line)
		}
		if strings.Contains(line, itemListMarker) {
			break
		}
	}

	cursor := i + 1
	for k := 1; k <= s.result.declared; k++ {
		cursor = s.skipBlank(cursor)
		marker := fmt.Sprintf("item [%d]:", k)
		if cursor >= len(lines) {
			s.diagnose(&MissingTierError{Line: cursor + 1, Index: k})
			break
		}
		if !strings.Contains(lines[cursor], marker) {
			s.diagnose(&MissingTierError{Line: cursor + 1, Index: k, Got: strings.TrimSpace(lines[cursor])})
			continue
		}
		cursor = s.readTier(cursor + 1)
	}

	return s.result, nil
}

func (s *scanner) skipBlank(i int) int {
	for i < len(s.lines) && strings.TrimSpace(s.lines[i]) == "" {
		i++
	}
	return i
}

// record accumulates the fields of one interval or point.
type record struct {
	start float64
	end   float64
	label string
	units int
}

// readTier consumes one tier body starting at line i and returns the index of
// the line that ended it.
func (s *scanner) readTier(i int) int {
	kind := KindInterval
	name := ""
	named := false
	retain := false
	var intervals []Interval

	var rec record
	inRecord := false

	finish := func() {
		if retain {
			s.result.tiers.set(NewTier(name, kind, intervals))
		}
	}

	for ; i < len(s.lines); i++ {
		line := s.lines[i]

		if !inRecord {
			switch {
			case strings.Contains(line, classMarker):
				if strings.Contains(line, "IntervalTier") {
					kind = KindInterval
				} else if strings.Contains(line, "TextTier") {
					kind = KindPoint
				}
			case !named && strings.Contains(line, nameMarker):
				name = unquote(valueOf(line))
				named = true
				s.result.names = append(s.result.names, name)
				retain = s.active[name]
			case strings.Contains(line, intervalsMarker), strings.Contains(line, pointsMarker):
				inRecord = true
				rec = record{}
			case strings.Contains(line, itemMarker):
				finish()
				return i
			}
			continue
		}

		if err := rec.take(line, kind); err != nil {
			err.Line = i + 1
			err.Tier = name
			s.diagnose(err)
			inRecord = false
			continue
		}

		switch {
		case rec.units == fieldsPerRecord:
			inRecord = false
			if retain {
				intervals = append(intervals, NewInterval(rec.start, rec.end, rec.label))
			}
		case rec.units > fieldsPerRecord:
			s.diagnose(&MalformedRecordError{
				Line:  i + 1,
				Tier:  name,
				Field: "record",
				Value: strings.TrimSpace(line),
				Err:   fmt.Errorf("%d field units, want %d", rec.units, fieldsPerRecord),
			})
			inRecord = false
		}
	}

	finish()
	return i
}

// take applies one line to the record. Lines that carry no known field are
// ignored.
func (r *record) take(line string, kind Kind) *MalformedRecordError {
	trimmed := strings.TrimSpace(line)

	if kind == KindPoint {
		switch {
		case strings.HasPrefix(trimmed, "number ="):
			v, err := parseTime(valueOf(trimmed))
			if err != nil {
				return &MalformedRecordError{Field: "number", Value: valueOf(trimmed), Err: err}
			}
			r.start, r.end = v, v
			r.units += 2
		case strings.HasPrefix(trimmed, "mark ="):
			r.label = unquote(valueOf(trimmed))
			r.units++
		}
		return nil
	}

	switch {
	case strings.HasPrefix(trimmed, "xmin ="):
		v, err := parseTime(valueOf(trimmed))
		if err != nil {
			return &MalformedRecordError{Field: "xmin", Value: valueOf(trimmed), Err: err}
		}
		r.start = v
		r.units++
	case strings.HasPrefix(trimmed, "xmax ="):
		v, err := parseTime(valueOf(trimmed))
		if err != nil {
			return &MalformedRecordError{Field: "xmax", Value: valueOf(trimmed), Err: err}
		}
		r.end = v
		r.units++
	case strings.HasPrefix(trimmed, "text ="):
		r.label = unquote(valueOf(trimmed))
		r.units++
	}
	return nil
}

func (s *scanner) diagnose(err error) {
	s.result.diagnostics = append(s.result.diagnostics, err)
	s.logger.Warn("textgrid: skipped content", slog.String("error", err.Error()))
}

// valueOf returns the text after the first '=' with surrounding space removed.
func valueOf(line string) string {
	_, value, ok := strings.Cut(line, "=")
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// unquote strips one pair of surrounding double quotes and collapses the
// doubled quotes Praat uses for escaping.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

func parseTime(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func parseDeclared(line string) int {
	n, err := strconv.Atoi(valueOf(line))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
