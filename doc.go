// File: lixenwraith/propbind/doc.go

// Package propbind binds named configuration values onto live Go values and
// onto static (type-level) contexts through reflection.
//
// Each configuration entry is a dot-separated path, a value of one of four
// kinds (int, float, bool, string) and two flags. Entries come from a
// Provider: a line-format file or a document store (embedded SQLite or
// MongoDB).
//
// Line format:
//
//	# comment
//	server.port = 8080
//	field server.name = primary
//	static field Limits.MaxConns = 64
//	motd = first line\nsecond line
//
// Values are inferred in the order int, float, bool ("true"/"false", any
// case), string. The literal sequence \n in a string is a line break.
//
// Path resolution:
//   - Every segment but the last is read: a property getter (Name() or
//     GetName()) is preferred, then a struct field.
//   - The last segment is written: a struct field when the entry is marked
//     "field", otherwise a property setter SetName(v).
//   - Unexported fields can be traversed and written.
//   - Fields are matched by name, then by `prop:"name"` tag.
//
// Static members:
//
//	type Limits struct{}
//	var limits struct{ MaxConns int }
//	propbind.RegisterStatic(reflect.TypeFor[Limits](), &limits)
//
//	// "static field Limits.MaxConns = 64" applied to any type of the same
//	// package sets limits.MaxConns.
//	m.ApplyToType(reflect.TypeFor[App]())
//
// Quick Start:
//
//	m, err := propbind.NewBuilder().
//	    WithFile("app.properties").
//	    WithEditable(true).
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var app App
//	if err := m.ApplyToInstance(&app); err != nil {
//	    log.Fatal(err)
//	}
//
//	port, err := propbind.GetValue[int](m, "server.port")
//	_ = propbind.SetValue(m, "server.port", 9090)
//	err = m.Save(ctx)
//
// Bulk application is not transactional: entries applied before a failing
// entry stay applied. Managers and providers are not safe for concurrent use.
//
// WatchFile reports changes of a property file on a channel. It never
// reloads on its own; the goroutine that owns the Manager calls Reload and
// ChangedKeys when a FileModified event arrives.
package propbind
