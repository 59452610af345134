// FILE: lixenwraith/propbind/manager.go
package propbind

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Scalar lists the Go types GetValue and SetValue accept. int and int64 both
// map to KindInt.
type Scalar interface {
	int | int64 | float64 | bool | string
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Logger receives reload, apply and save events. Default: no-op
	Logger *zap.Logger
}

// Manager owns the current entry list of a provider and applies it to
// objects and static contexts. A Manager is editable when its provider
// implements EditableProvider. It is not safe for concurrent use.
type Manager struct {
	provider Provider
	editable EditableProvider
	entries  []*Entry
	logger   *zap.Logger
}

// NewManager creates a Manager and loads the provider's entries.
func NewManager(ctx context.Context, provider Provider) (*Manager, error) {
	return NewManagerWithOptions(ctx, provider, ManagerOptions{})
}

// NewManagerWithOptions creates a Manager with custom options.
func NewManagerWithOptions(ctx context.Context, provider Provider, opts ManagerOptions) (*Manager, error) {
	m := &Manager{logger: opts.Logger}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if err := m.ReloadFrom(ctx, provider); err != nil {
		return nil, err
	}
	return m, nil
}

// Editable reports whether SetValue and Save are available.
func (m *Manager) Editable() bool {
	return m.editable != nil
}

// Lookup returns the value under key as text, or key itself when no entry
// matches.
func (m *Manager) Lookup(key string) string {
	if e := findEntry(m.entries, key); e != nil {
		return e.Value.String()
	}
	return key
}

// ContainsKey reports whether an entry exists for key.
func (m *Manager) ContainsKey(key string) bool {
	return findEntry(m.entries, key) != nil
}

// Keys returns the paths of all binding entries in provider order. A path
// bound more than once is listed at its first position.
func (m *Manager) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	seen := make(map[string]bool, len(m.entries))
	for _, e := range m.entries {
		if e.Passthrough || seen[e.Path] {
			continue
		}
		seen[e.Path] = true
		keys = append(keys, e.Path)
	}
	return keys
}

// Entries returns a copy of the current entry list, passthrough entries included.
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = *e
	}
	return out
}

// GetValue returns the value under key. The stored kind must match T.
func GetValue[T Scalar](m *Manager, key string) (T, error) {
	return typedValue[T](findEntry(m.entries, key), key)
}

// SetValue replaces the value under key in memory; Save persists it. The
// stored kind must match T.
func SetValue[T Scalar](m *Manager, key string, value T) error {
	if !m.Editable() {
		return fmt.Errorf("%w: cannot set %q", ErrNotEditable, key)
	}
	e := findEntry(m.entries, key)
	if e == nil {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	v := scalarValue(value)
	if e.Kind() != v.Kind() {
		return fmt.Errorf("%w: %q holds %s, declared %s", ErrTypeMismatch, key, e.Kind(), v.Kind())
	}
	e.Value = v
	return nil
}

// ApplyToInstance applies every binding entry to instance in order. It stops
// at the first failure; earlier entries stay applied.
func (m *Manager) ApplyToInstance(instance any) error {
	if err := applyEntries(m.entries, func(e *Entry) error { return e.ApplyToInstance(instance) }); err != nil {
		return err
	}
	m.logger.Debug("Applied properties to instance", zap.String("type", fmt.Sprintf("%T", instance)))
	return nil
}

// ApplyToType applies every binding entry to the static context t in order.
// Only static entries can be applied this way.
func (m *Manager) ApplyToType(t reflect.Type) error {
	if err := applyEntries(m.entries, func(e *Entry) error { return e.ApplyToType(t) }); err != nil {
		return err
	}
	m.logger.Debug("Applied properties to type", zap.Stringer("type", t))
	return nil
}

// Reload replaces the entry list with a fresh load from the current provider.
func (m *Manager) Reload(ctx context.Context) error {
	return m.ReloadFrom(ctx, m.provider)
}

// ReloadFrom switches to provider and loads its entries. Editability follows
// the new provider. On failure the manager keeps its previous state.
func (m *Manager) ReloadFrom(ctx context.Context, provider Provider) error {
	if provider == nil {
		return fmt.Errorf("%w: provider cannot be nil", ErrInvalidContext)
	}

	entries, err := provider.Entries(ctx)
	if err != nil {
		return err
	}

	m.provider = provider
	m.editable, _ = provider.(EditableProvider)
	m.entries = entries

	m.logger.Debug("Loaded properties",
		zap.Int("entries", len(entries)),
		zap.Bool("editable", m.Editable()))
	return nil
}

// Save writes the full entry list back to the provider.
func (m *Manager) Save(ctx context.Context) error {
	if !m.Editable() {
		return fmt.Errorf("%w: provider %T does not support saving", ErrNotEditable, m.provider)
	}
	if err := m.editable.Save(ctx, m.entries); err != nil {
		return err
	}
	m.logger.Debug("Saved properties", zap.Int("entries", len(m.entries)))
	return nil
}

func typedValue[T Scalar](e *Entry, key string) (T, error) {
	var zero T
	if e == nil {
		return zero, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	want := scalarValue(zero).Kind()
	if e.Kind() != want {
		return zero, fmt.Errorf("%w: %q holds %s, declared %s", ErrTypeMismatch, key, e.Kind(), want)
	}

	var out any
	switch any(zero).(type) {
	case int:
		i, _ := e.Value.Int()
		out = int(i)
	default:
		out = e.Value.Any()
	}
	return out.(T), nil
}

func scalarValue[T Scalar](v T) Value {
	switch x := any(v).(type) {
	case int:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case float64:
		return FloatValue(x)
	case bool:
		return BoolValue(x)
	default:
		return StringValue(any(v).(string))
	}
}
