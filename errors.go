package decimate

import "errors"

// Sentinel errors surfaced at the two entry points, Decimate and
// DecimateBudget. Internal hot-path rejections (a single operation's
// collapse failing validity) stay pure data (the failCost sentinel in
// cost.go) rather than an error value: only conditions that abort or
// degrade a whole run reach the caller as an error.
var (
	// ErrConfigurationInvalid reports an unsupported format, a zero
	// count, or contradictory flags in the Operation. No mutation of
	// the input buffers has occurred when this is returned.
	ErrConfigurationInvalid = errors.New("decimate: invalid configuration")

	// ErrBudgetUnreachable reports that DecimateBudget's binary search
	// could not bring the triangle count at or below the target within
	// its iteration (or time) budget. The smallest observed probe's
	// result is still written to op.
	ErrBudgetUnreachable = errors.New("decimate: budget target unreachable within iteration limit")

	// ErrCanceled reports that the run observed context cancellation,
	// either at a syncstep barrier (Decimate still packs the partial
	// result) or between budget probes. The budget driver's timelimit
	// is not a cancellation: it ends the search, which then returns its
	// best result.
	ErrCanceled = errors.New("decimate: canceled")
)
