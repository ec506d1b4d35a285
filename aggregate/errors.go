package aggregate

import "errors"

// ErrEmptySelection is returned when a filter leaves no rows to aggregate.
// Pages report it as a warning rather than a failure.
var ErrEmptySelection = errors.New("no data for selection")
