// FILE: lixenwraith/propbind/static.go
package propbind

import (
	"fmt"
	"reflect"
	"sync"
)

// staticRegistry maps "<package path>.<type name>" to the holder of that
// type's static members.
type staticRegistry struct {
	holders map[string]reflect.Value
	mutex   sync.RWMutex
}

var statics = &staticRegistry{holders: make(map[string]reflect.Value)}

// RegisterStatic makes holder the static member set of type t. Static entries
// applied with ApplyToType resolve their first segment against the names
// registered in the context type's package, falling back to the context
// type's own holder.
//
// holder must be a non-nil pointer, usually to a struct whose fields and
// Set/Get methods are the static members:
//
//	var serverDefaults struct{ Port int }
//	propbind.RegisterStatic(reflect.TypeFor[Server](), &serverDefaults)
func RegisterStatic(t reflect.Type, holder any) error {
	key, err := staticKeyOf(t)
	if err != nil {
		return err
	}

	hv := reflect.ValueOf(holder)
	if hv.Kind() != reflect.Pointer || hv.IsNil() {
		return fmt.Errorf("%w: static holder for %s must be a non-nil pointer, got %T", ErrInvalidContext, key, holder)
	}

	statics.mutex.Lock()
	defer statics.mutex.Unlock()
	statics.holders[key] = hv
	return nil
}

// UnregisterStatic removes the static holder of t, if any.
func UnregisterStatic(t reflect.Type) {
	key, err := staticKeyOf(t)
	if err != nil {
		return
	}

	statics.mutex.Lock()
	defer statics.mutex.Unlock()
	delete(statics.holders, key)
}

// lookupStatic finds the holder registered under name in package pkgPath.
func lookupStatic(pkgPath, name string) (reflect.Value, bool) {
	statics.mutex.RLock()
	defer statics.mutex.RUnlock()
	hv, ok := statics.holders[pkgPath+"."+name]
	return hv, ok
}

// staticsOf returns the holder registered for t itself.
func staticsOf(t reflect.Type) (reflect.Value, bool) {
	key, err := staticKeyOf(t)
	if err != nil {
		return reflect.Value{}, false
	}

	statics.mutex.RLock()
	defer statics.mutex.RUnlock()
	hv, ok := statics.holders[key]
	return hv, ok
}

func staticKeyOf(t reflect.Type) (string, error) {
	if t == nil {
		return "", fmt.Errorf("%w: type cannot be nil", ErrInvalidContext)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "", fmt.Errorf("%w: static members require a named type, got %s", ErrInvalidContext, t)
	}
	return t.PkgPath() + "." + t.Name(), nil
}

// namespaceOf is the package path used to qualify static type names.
func namespaceOf(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath()
}
