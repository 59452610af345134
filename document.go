// FILE: lixenwraith/propbind/document.go
package propbind

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Document is the stored form of an entry in a document store.
// PropertyName is expected to be unique within a collection.
type Document struct {
	ID            string
	PropertyName  string
	PropertyValue Value
	IsStatic      bool
	IsField       bool
}

// DocumentStore opens a session on one document collection. Every load and
// save opens its own session and closes it before returning.
type DocumentStore interface {
	Open(ctx context.Context) (Collection, error)
}

// Collection is an open session on a document collection.
type Collection interface {
	FindAll(ctx context.Context) ([]Document, error)
	FindByName(ctx context.Context, name string) ([]Document, error)
	// Insert stores a new document and returns its id, empty if the store
	// did not acknowledge the insert.
	Insert(ctx context.Context, doc Document) (string, error)
	// Update replaces the document with doc.ID and returns the number of
	// documents matched.
	Update(ctx context.Context, doc Document) (int64, error)
	Close() error
}

// DocumentOptions configures the document-store providers.
type DocumentOptions struct {
	// Logger receives load and save events. Default: no-op
	Logger *zap.Logger
}

// DocumentProvider maps every document of a collection to one entry.
// No ordering is guaranteed beyond what the store returns.
type DocumentProvider struct {
	store  DocumentStore
	logger *zap.Logger
}

var _ Provider = (*DocumentProvider)(nil)

// NewDocumentProvider creates a read-only provider over store.
func NewDocumentProvider(store DocumentStore) *DocumentProvider {
	return NewDocumentProviderWithOptions(store, DocumentOptions{})
}

// NewDocumentProviderWithOptions creates a read-only provider with custom options.
func NewDocumentProviderWithOptions(store DocumentStore, opts DocumentOptions) *DocumentProvider {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentProvider{store: store, logger: logger}
}

// Entries returns one entry per stored document.
func (p *DocumentProvider) Entries(ctx context.Context) (entries []*Entry, err error) {
	coll, err := p.store.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, closeCollection(coll))
	}()

	docs, err := coll.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing documents: %w", ErrStoreUnavailable, err)
	}

	entries = make([]*Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, &Entry{
			Path:     doc.PropertyName,
			Value:    doc.PropertyValue,
			IsStatic: doc.IsStatic,
			IsField:  doc.IsField,
		})
	}

	p.logger.Debug("Loaded property documents", zap.Int("entries", len(entries)))
	return entries, nil
}

// EditableDocumentProvider adds Save to DocumentProvider.
type EditableDocumentProvider struct {
	DocumentProvider
}

var _ EditableProvider = (*EditableDocumentProvider)(nil)

// NewEditableDocumentProvider creates an editable provider over store.
func NewEditableDocumentProvider(store DocumentStore) *EditableDocumentProvider {
	return NewEditableDocumentProviderWithOptions(store, DocumentOptions{})
}

// NewEditableDocumentProviderWithOptions creates an editable provider with custom options.
func NewEditableDocumentProviderWithOptions(store DocumentStore, opts DocumentOptions) *EditableDocumentProvider {
	return &EditableDocumentProvider{DocumentProvider: *NewDocumentProviderWithOptions(store, opts)}
}

// Save upserts every binding entry by property name. A name matching more
// than one document is a store inconsistency. Entries saved before a failure
// stay saved.
func (p *EditableDocumentProvider) Save(ctx context.Context, entries []*Entry) (err error) {
	coll, err := p.store.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeCollection(coll))
	}()

	var inserted, updated int
	for _, entry := range entries {
		if entry.Passthrough {
			continue
		}

		found, err := coll.FindByName(ctx, entry.Path)
		if err != nil {
			return fmt.Errorf("%w: looking up [%s]: %w", ErrPersistenceFailure, entry.Path, err)
		}

		switch len(found) {
		case 0:
			id, err := coll.Insert(ctx, Document{
				PropertyName:  entry.Path,
				PropertyValue: entry.Value,
				IsStatic:      entry.IsStatic,
				IsField:       entry.IsField,
			})
			if err != nil {
				return fmt.Errorf("%w: inserting [%s]: %w", ErrPersistenceFailure, entry.Path, err)
			}
			if id == "" {
				return fmt.Errorf("%w: insert of [%s] was not acknowledged", ErrPersistenceFailure, entry.Path)
			}
			inserted++
		case 1:
			doc := found[0]
			doc.PropertyValue = entry.Value
			doc.IsStatic = entry.IsStatic
			doc.IsField = entry.IsField
			n, err := coll.Update(ctx, doc)
			if err != nil {
				return fmt.Errorf("%w: updating [%s] (id %s): %w", ErrPersistenceFailure, entry.Path, doc.ID, err)
			}
			if n != 1 {
				return fmt.Errorf("%w: update of [%s] (id %s) affected %d documents", ErrPersistenceFailure, entry.Path, doc.ID, n)
			}
			updated++
		default:
			return fmt.Errorf("%w: %d documents share property name [%s]", ErrStoreInconsistency, len(found), entry.Path)
		}
	}

	p.logger.Debug("Saved property documents",
		zap.Int("inserted", inserted),
		zap.Int("updated", updated))
	return nil
}

func closeCollection(coll Collection) error {
	if err := coll.Close(); err != nil {
		return fmt.Errorf("closing collection: %w", err)
	}
	return nil
}
