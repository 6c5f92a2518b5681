package diagram

import "errors"

var (
	// Connect errors
	ErrNotConnectable = errors.New("endpoint is not a connectable element")
	ErrSelfLink       = errors.New("edge cannot use itself as an endpoint")
	ErrLinkCycle      = errors.New("endpoint edge is anchored on this edge")

	// Edge state errors
	ErrDetached = errors.New("edge has no endpoints")

	// Scene errors
	ErrDuplicateID     = errors.New("duplicate element id")
	ErrElementNotFound = errors.New("element not found")
	ErrInvalidDocument = errors.New("invalid scene document")
)
