// FILE: lixenwraith/propbind/entry.go
package propbind

import (
	"fmt"
	"reflect"
)

// Entry is one configuration binding: a dotted path, a typed value and the
// flags controlling how the path is resolved.
type Entry struct {
	// Path is a call chain separated by '.', e.g. "server.tls.port".
	Path string
	// Value is assigned to the member the path resolves to.
	Value Value
	// IsField resolves the last segment as a struct field rather than a Set/Get property.
	IsField bool
	// IsStatic resolves the first segment as a type with registered static members.
	IsStatic bool

	// Passthrough marks comment and blank lines kept by editable line stores.
	// Passthrough entries carry no binding.
	Passthrough bool
	// Source is the trimmed original line, written back verbatim for passthrough entries.
	Source string
}

// Kind returns the kind of the entry's value.
func (e *Entry) Kind() Kind {
	return e.Value.Kind()
}

// ApplyToInstance writes the entry's value into the member of instance named
// by the path. instance must be a non-nil pointer. Static entries are
// rejected; use ApplyToType.
func (e *Entry) ApplyToInstance(instance any) error {
	if e.IsStatic {
		return fmt.Errorf("%w: static entry %q requires a type context", ErrInvalidMode, e.Path)
	}

	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: instance must be a non-nil pointer, got %T", ErrInvalidContext, instance)
	}

	return resolve(e.Path, e.Value, e.IsField, false, rv.Type(), rv)
}

// ApplyToType writes the entry's value into the static members reachable
// from t (see RegisterStatic). Only static entries may be applied to a type.
func (e *Entry) ApplyToType(t reflect.Type) error {
	if !e.IsStatic {
		return fmt.Errorf("%w: entry %q is not static and needs an instance context", ErrInvalidMode, e.Path)
	}
	if t == nil {
		return fmt.Errorf("%w: type context cannot be nil", ErrInvalidContext)
	}

	return resolve(e.Path, e.Value, e.IsField, true, t, reflect.Value{})
}
