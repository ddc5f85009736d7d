package analysis

import "errors"

// Error kinds surfaced by the analysis pipeline and queries. Handlers map
// these to HTTP status codes; everything else is an internal error.
var (
	// ErrInvalidDateFormat is returned when a date string does not parse as
	// YYYY-MM-DD (including impossible calendar dates)
	ErrInvalidDateFormat = errors.New("incorrect date format, should be YYYY-MM-DD")

	// ErrNoData is returned when the provider yields no rows for the
	// requested symbols/range, or fewer than 2 aligned return observations
	ErrNoData = errors.New("not enough price data to compute correlations")

	// ErrNoSession is returned by queries issued before any successful
	// analysis run
	ErrNoSession = errors.New("no analysis session, run an analysis first")

	// ErrUnknownInstrument is returned when a symbol is not part of the
	// current session's matrix/graph
	ErrUnknownInstrument = errors.New("unknown instrument")
)
