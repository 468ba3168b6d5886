package allocation

import (
	"fmt"
	"math"
	"strings"

	"github.com/helixml/segalloc/domain/segment"
)

// Command is a decoded keyboard intent.
type Command int

// Commands.
const (
	CommandMoveLeft Command = iota + 1
	CommandMoveRight
	CommandMoveUp
	CommandMoveDown
	CommandSelect
	CommandCommit
	CommandReset
	CommandResetAll
)

var commandNames = map[Command]string{
	CommandMoveLeft:  "left",
	CommandMoveRight: "right",
	CommandMoveUp:    "up",
	CommandMoveDown:  "down",
	CommandSelect:    "select",
	CommandCommit:    "commit",
	CommandReset:     "reset",
	CommandResetAll:  "reset-all",
}

// String returns the command name.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// ParseCommand parses a command name as returned by String.
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range commandNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// Cursor returns the segment under the keyboard cursor.
func (e *Engine) Cursor() (int, bool) {
	if e.cursor == nil {
		return 0, false
	}
	return e.cursor.ID(), true
}

// Dispatch applies a keyboard command.
//
// With no cursor, the first move places it on the first segment of the upper
// tier. Left and right walk the cursor's tier in document order and stop at
// either end. Up and down switch to the upper and lower tier, landing on the
// segment containing the cursor midpoint, or the nearest one.
func (e *Engine) Dispatch(cmd Command) (Changes, error) {
	switch cmd {
	case CommandMoveLeft:
		return e.moveWithin(-1), nil
	case CommandMoveRight:
		return e.moveWithin(1), nil
	case CommandMoveUp:
		return e.moveAcross(e.upperTier()), nil
	case CommandMoveDown:
		return e.moveAcross(e.lowerTier()), nil
	case CommandSelect:
		if e.cursor == nil {
			return nil, nil
		}
		return e.HandlePick(e.cursor.ID(), true)
	case CommandCommit:
		return e.Commit()
	case CommandReset:
		if e.cursor == nil {
			return nil, nil
		}
		return e.ResetOne(e.cursor.ID())
	case CommandResetAll:
		return e.ResetAll(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (e *Engine) upperTier() string { return e.set.TierA() }

func (e *Engine) lowerTier() string { return e.set.TierB() }

func (e *Engine) moveWithin(step int) Changes {
	if e.cursor == nil {
		return e.place()
	}
	layer := e.set.Layer(e.cursor.Layer())
	i := indexOf(layer, e.cursor)
	next := i + step
	if next < 0 || next >= len(layer) {
		return nil
	}
	return e.moveTo(layer[next])
}

func (e *Engine) moveAcross(tier string) Changes {
	if e.cursor == nil {
		return e.place()
	}
	if e.cursor.Layer() == tier {
		return nil
	}
	target := nearest(e.set.Layer(tier), e.cursor.Interval().Midpoint())
	if target == nil {
		return nil
	}
	return e.moveTo(target)
}

// place puts the cursor on the first segment of the upper tier, or of the
// lower tier when the upper one is empty.
func (e *Engine) place() Changes {
	for _, tier := range []string{e.upperTier(), e.lowerTier()} {
		if layer := e.set.Layer(tier); len(layer) > 0 {
			return e.moveTo(layer[0])
		}
	}
	return nil
}

func (e *Engine) moveTo(s *segment.Segment) Changes {
	changes := changeSet{}
	if e.cursor != nil {
		changes.add(e.cursor.ID())
	}
	e.cursor = s
	changes.add(s.ID())
	return changes.list()
}

func indexOf(layer []*segment.Segment, s *segment.Segment) int {
	for i, l := range layer {
		if l == s {
			return i
		}
	}
	return -1
}

// nearest returns the first segment containing t, else the one whose span is
// closest to t.
func nearest(layer []*segment.Segment, t float64) *segment.Segment {
	var best *segment.Segment
	bestDist := math.Inf(1)
	for _, s := range layer {
		if s.Interval().Contains(t) {
			return s
		}
		dist := math.Min(math.Abs(s.Start()-t), math.Abs(s.End()-t))
		if dist < bestDist {
			best, bestDist = s, dist
		}
	}
	return best
}
