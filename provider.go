// FILE: lixenwraith/propbind/provider.go
package propbind

import (
	"context"
	"reflect"
)

// Provider produces the ordered entry list of a backing store.
// Every call yields freshly constructed entries.
type Provider interface {
	Entries(ctx context.Context) ([]*Entry, error)
}

// EditableProvider is a Provider that can also persist an entry list back to
// its store.
type EditableProvider interface {
	Provider
	Save(ctx context.Context, entries []*Entry) error
}

// ApplyFrom loads p and applies every binding entry to instance, in order.
// Entries applied before a failure stay applied.
func ApplyFrom(ctx context.Context, p Provider, instance any) error {
	entries, err := p.Entries(ctx)
	if err != nil {
		return err
	}
	return applyEntries(entries, func(e *Entry) error { return e.ApplyToInstance(instance) })
}

// ApplyTypeFrom loads p and applies every binding entry to the static context t.
func ApplyTypeFrom(ctx context.Context, p Provider, t reflect.Type) error {
	entries, err := p.Entries(ctx)
	if err != nil {
		return err
	}
	return applyEntries(entries, func(e *Entry) error { return e.ApplyToType(t) })
}

// ValueFrom loads p and returns the value stored under key.
func ValueFrom[T Scalar](ctx context.Context, p Provider, key string) (T, error) {
	entries, err := p.Entries(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return typedValue[T](findEntry(entries, key), key)
}

func applyEntries(entries []*Entry, apply func(*Entry) error) error {
	for _, e := range entries {
		if e.Passthrough {
			continue
		}
		if err := apply(e); err != nil {
			return err
		}
	}
	return nil
}

// findEntry returns the first binding entry whose path equals key.
func findEntry(entries []*Entry, key string) *Entry {
	for _, e := range entries {
		if !e.Passthrough && e.Path == key {
			return e
		}
	}
	return nil
}
