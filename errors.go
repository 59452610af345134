// FILE: lixenwraith/propbind/errors.go
package propbind

import "errors"

// Path resolution errors
var (
	// ErrMissingElement is returned when a path segment does not exist on the current target.
	ErrMissingElement = errors.New("element does not exist in supplied context")
	// ErrInaccessibleMember is returned when the final segment cannot be written as the requested member kind.
	ErrInaccessibleMember = errors.New("member cannot be accessed")
	// ErrInvalidMode is returned when a static entry is applied to an instance or vice versa.
	ErrInvalidMode = errors.New("invalid apply mode for entry")
	// ErrInvalidContext is returned for nil contexts or non-pointer instances.
	ErrInvalidContext = errors.New("invalid context")
)

// Manager errors
var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrTypeMismatch = errors.New("declared and stored value kinds differ")
	ErrNotEditable  = errors.New("manager is not editable")
)

// Store errors
var (
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrStoreInconsistency = errors.New("store inconsistency")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrMalformedLine      = errors.New("malformed line")
	ErrUnsupportedValue   = errors.New("unsupported stored value")
)
