// FILE: lixenwraith/propbind/resolver.go
package propbind

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
	"unsafe"
)

// tagName is the struct tag consulted when no field matches a segment by name.
const tagName = "prop"

var errorType = reflect.TypeFor[error]()

// resolve walks all but the last segment of path starting at target and
// writes v into the member named by the last segment. Intermediate hops only
// read. For static entries the walk starts at a registered statics holder.
func resolve(path string, v Value, isField, isStatic bool, ctxType reflect.Type, target reflect.Value) error {
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if segment == "" {
			return fmt.Errorf("%w: invalid path %q", ErrMissingElement, path)
		}
	}
	last := len(segments) - 1

	start := 0
	if isStatic {
		holder, found := reflect.Value{}, false
		if last > 0 {
			holder, found = lookupStatic(namespaceOf(ctxType), segments[0])
		}
		if found {
			start = 1
		} else {
			// Unresolved first segment: stay on the context type and treat
			// the segment as one of its members.
			holder, found = staticsOf(ctxType)
			if !found {
				return fmt.Errorf("%w: %q: no static members registered for %s", ErrMissingElement, path, ctxType)
			}
		}
		target = holder
	}

	for i := start; i < last; i++ {
		current, ok := indirect(target)
		if !ok {
			return fmt.Errorf("%w: %q: segment %q is reached through a nil value", ErrMissingElement, path, segments[i])
		}
		next, found, err := readMember(current, segments[i])
		if err != nil {
			return fmt.Errorf("%w: %q: reading %q: %w", ErrInaccessibleMember, path, segments[i], err)
		}
		if !found {
			return fmt.Errorf("%w: %q: segment %q not found on %s", ErrMissingElement, path, segments[i], current.Type())
		}
		target = next
	}

	current, ok := indirect(target)
	if !ok {
		return fmt.Errorf("%w: %q: segment %q is reached through a nil value", ErrMissingElement, path, segments[last])
	}

	var err error
	if isField {
		err = writeField(current, segments[last], v)
	} else {
		err = writeProperty(current, segments[last], v)
	}
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInaccessibleMember, path, err)
	}
	return nil
}

// indirect follows pointers and interfaces down to a concrete value. A
// pointee is addressable, so a read-only flag inherited from an unexported
// pointer field is dropped on the way down.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, false
		}
		v = unlock(v.Elem())
	}
	return v, v.IsValid()
}

// readMember reads the property or, failing that, the field named name.
func readMember(target reflect.Value, name string) (reflect.Value, bool, error) {
	if getter, ok := getterOf(target, name); ok {
		out := getter.Call(nil)
		if len(out) == 2 && !out[1].IsNil() {
			return reflect.Value{}, true, out[1].Interface().(error)
		}
		return out[0], true, nil
	}

	if field, ok := fieldOf(target.Type(), name); ok {
		fv, err := target.FieldByIndexErr(field.Index)
		if err != nil {
			return reflect.Value{}, true, err
		}
		return unlock(fv), true, nil
	}

	return reflect.Value{}, false, nil
}

func writeField(target reflect.Value, name string, v Value) error {
	field, ok := fieldOf(target.Type(), name)
	if !ok {
		return fmt.Errorf("no field %q on %s", name, target.Type())
	}
	fv, err := target.FieldByIndexErr(field.Index)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	if !fv.CanAddr() {
		return fmt.Errorf("field %q of %s is not addressable", name, target.Type())
	}
	fv = unlock(fv)

	rv, err := assignable(v, fv.Type())
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	fv.Set(rv)
	return nil
}

func writeProperty(target reflect.Value, name string, v Value) error {
	setter, ok := setterOf(target, name)
	if !ok {
		return fmt.Errorf("no settable property %q on %s", name, target.Type())
	}

	rv, err := assignable(v, setter.Type().In(0))
	if err != nil {
		return fmt.Errorf("property %q: %w", name, err)
	}
	out := setter.Call([]reflect.Value{rv})
	if len(out) == 1 && !out[0].IsNil() {
		return fmt.Errorf("property %q: %w", name, out[0].Interface().(error))
	}
	return nil
}

// fieldOf finds a struct field by exact name, then by its prop tag.
func fieldOf(t reflect.Type, name string) (reflect.StructField, bool) {
	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	if f, ok := t.FieldByName(name); ok {
		return f, true
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get(tagName), ",")
		if tag != "" && tag != "-" && tag == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// getterOf finds name() or Getname() returning one value or (value, error).
func getterOf(target reflect.Value, name string) (reflect.Value, bool) {
	for _, candidate := range []string{name, "Get" + upperFirst(name)} {
		m, ok := methodOf(target, candidate)
		if !ok {
			continue
		}
		mt := m.Type()
		if mt.NumIn() != 0 {
			continue
		}
		if mt.NumOut() == 1 || (mt.NumOut() == 2 && mt.Out(1) == errorType) {
			return m, true
		}
	}
	return reflect.Value{}, false
}

// setterOf finds Setname(v) returning nothing or an error.
func setterOf(target reflect.Value, name string) (reflect.Value, bool) {
	m, ok := methodOf(target, "Set"+upperFirst(name))
	if !ok {
		return reflect.Value{}, false
	}
	mt := m.Type()
	if mt.NumIn() != 1 {
		return reflect.Value{}, false
	}
	if mt.NumOut() == 0 || (mt.NumOut() == 1 && mt.Out(0) == errorType) {
		return m, true
	}
	return reflect.Value{}, false
}

// methodOf looks on the pointer first so pointer-receiver methods are found
// for addressable targets.
func methodOf(target reflect.Value, name string) (reflect.Value, bool) {
	if target.CanAddr() {
		if m := target.Addr().MethodByName(name); m.IsValid() && m.CanInterface() {
			return m, true
		}
	}
	// Methods of a read-only value cannot be called.
	if m := target.MethodByName(name); m.IsValid() && m.CanInterface() {
		return m, true
	}
	return reflect.Value{}, false
}

// unlock strips the read-only flag reflect sets on values reached through
// unexported fields, so they can be written and their methods called.
func unlock(v reflect.Value) reflect.Value {
	if v.CanAddr() && !v.CanSet() {
		return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
	}
	return v
}

// assignable converts v into a value of type t.
func assignable(v Value, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Pointer:
		inner, err := assignable(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	case reflect.Interface:
		native := reflect.ValueOf(v.Any())
		if !native.Type().AssignableTo(t) {
			return reflect.Value{}, fmt.Errorf("cannot assign %s value to %s", v.Kind(), t)
		}
		return native, nil
	}

	out := reflect.New(t).Elem()
	switch v.Kind() {
	case KindInt:
		i, _ := v.Int()
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if out.OverflowInt(i) {
				return reflect.Value{}, fmt.Errorf("value %d overflows %s", i, t)
			}
			out.SetInt(i)
			return out, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if i < 0 || out.OverflowUint(uint64(i)) {
				return reflect.Value{}, fmt.Errorf("value %d overflows %s", i, t)
			}
			out.SetUint(uint64(i))
			return out, nil
		case reflect.Float32, reflect.Float64:
			out.SetFloat(float64(i))
			return out, nil
		}
	case KindFloat:
		f, _ := v.Float()
		if t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64 {
			if out.OverflowFloat(f) {
				return reflect.Value{}, fmt.Errorf("value %g overflows %s", f, t)
			}
			out.SetFloat(f)
			return out, nil
		}
	case KindBool:
		b, _ := v.Bool()
		if t.Kind() == reflect.Bool {
			out.SetBool(b)
			return out, nil
		}
	case KindString:
		s, _ := v.Str()
		if t.Kind() == reflect.String {
			out.SetString(s)
			return out, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %s value to %s", v.Kind(), t)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
