package allocation

import "errors"

var (
	// ErrNoSegments indicates the engine was created without segments.
	ErrNoSegments = errors.New("no file or segments loaded")

	// ErrProvideBothTiers indicates a commit without a member from each tier.
	ErrProvideBothTiers = errors.New("both tiers must be represented before committing")

	// ErrInvariantViolation indicates an internal logic error. It is never a
	// user mistake and callers should treat it as fatal for the session.
	ErrInvariantViolation = errors.New("allocation invariant violated")

	// ErrUnknownSegment indicates a segment id that is not in the set.
	ErrUnknownSegment = errors.New("unknown segment")

	// ErrUnknownCommand indicates a command name that cannot be parsed.
	ErrUnknownCommand = errors.New("unknown command")
)
