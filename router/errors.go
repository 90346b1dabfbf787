package router

import "errors"

// Routing errors surfaced to the caller.
var (
	// ErrSourceNotFound is returned when the source key is not a vertex of
	// the graph.
	ErrSourceNotFound = errors.New("router: source vertex not found")
	// ErrTargetNotFound is returned when the target key is not a vertex of
	// the graph.
	ErrTargetNotFound = errors.New("router: target vertex not found")
	// ErrNoRoute is returned when the target stays unreachable within the
	// hop budget.
	ErrNoRoute = errors.New("router: no route found")
	// ErrNonPositiveAmount is returned for a zero or negative input amount.
	ErrNonPositiveAmount = errors.New("router: input amount must be positive")
)

func isNoRoute(err error) bool {
	return errors.Is(err, ErrNoRoute)
}
