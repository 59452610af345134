// File: lixenwraith/propbind/builder.go
package propbind

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// StoreKind selects the backing store a Builder wires up.
type StoreKind string

const (
	StoreFile   StoreKind = "file"
	StoreSQLite StoreKind = "sqlite"
	StoreMongo  StoreKind = "mongo"
)

// Builder provides a fluent interface for building a Manager
type Builder struct {
	store       StoreKind
	path        string
	collection  string
	uri         string
	database    string
	commentSign string
	editable    bool
	logger      *zap.Logger
	err         error
}

// NewBuilder creates a new manager builder. Without further options it
// builds a read-only file manager.
func NewBuilder() *Builder {
	return &Builder{
		store:       StoreFile,
		commentSign: DefaultCommentSign,
		logger:      zap.NewNop(),
	}
}

// WithFile selects a line-format file store
func (b *Builder) WithFile(path string) *Builder {
	b.store = StoreFile
	b.path = path
	return b
}

// WithSQLite selects the embedded SQLite document store
func (b *Builder) WithSQLite(path, collection string) *Builder {
	b.store = StoreSQLite
	b.path = path
	b.collection = collection
	return b
}

// WithMongo selects a MongoDB document store
func (b *Builder) WithMongo(uri, database, collection string) *Builder {
	b.store = StoreMongo
	b.uri = uri
	b.database = database
	b.collection = collection
	return b
}

// WithEditable chooses the editable provider variant
func (b *Builder) WithEditable(editable bool) *Builder {
	b.editable = editable
	return b
}

// WithCommentSign sets the comment marker of file stores
func (b *Builder) WithCommentSign(sign string) *Builder {
	if sign == "" {
		b.err = errors.New("comment sign cannot be empty")
		return b
	}
	b.commentSign = sign
	return b
}

// WithLogger sets the logger shared by the manager and its provider
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Provider builds the provider without loading it
func (b *Builder) Provider() (Provider, error) {
	if b.err != nil {
		return nil, b.err
	}

	switch b.store {
	case StoreFile:
		opts := FileOptions{CommentSign: b.commentSign, Logger: b.logger}
		if b.editable {
			p, err := NewEditableFileProviderWithOptions(b.path, opts)
			if err != nil {
				return nil, err
			}
			return p, nil
		}
		p, err := NewFileProviderWithOptions(b.path, opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	case StoreSQLite:
		return b.documentProvider(NewSQLiteStore(b.path, b.collection)), nil
	case StoreMongo:
		return b.documentProvider(NewMongoStore(b.uri, b.database, b.collection)), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", b.store)
	}
}

func (b *Builder) documentProvider(store DocumentStore) Provider {
	opts := DocumentOptions{Logger: b.logger}
	if b.editable {
		return NewEditableDocumentProviderWithOptions(store, opts)
	}
	return NewDocumentProviderWithOptions(store, opts)
}

// Build creates the provider and a Manager loaded from it
func (b *Builder) Build(ctx context.Context) (*Manager, error) {
	provider, err := b.Provider()
	if err != nil {
		return nil, err
	}
	return NewManagerWithOptions(ctx, provider, ManagerOptions{Logger: b.logger})
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild(ctx context.Context) *Manager {
	m, err := b.Build(ctx)
	if err != nil {
		panic(fmt.Sprintf("propbind build failed: %v", err))
	}
	return m
}
