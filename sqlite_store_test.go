// FILE: lixenwraith/propbind/sqlite_store_test.go
package propbind

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T, collection string) *SQLiteStore {
	t.Helper()
	return NewSQLiteStore(filepath.Join(t.TempDir(), "props.db"), collection)
}

// TestSQLiteStore tests the embedded document store end to end
func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyCollection", func(t *testing.T) {
		entries, err := NewDocumentProvider(newTestSQLiteStore(t, "props")).Entries(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("SaveThenLoad", func(t *testing.T) {
		store := newTestSQLiteStore(t, "props")
		p := NewEditableDocumentProvider(store)

		saved := []*Entry{
			{Path: "server.port", Value: IntValue(8080)},
			{Path: "ratio", Value: FloatValue(42)},
			{Path: "Config.Enabled", Value: BoolValue(true), IsStatic: true, IsField: true},
			{Path: "motd", Value: StringValue("a\nb")},
			{Path: "digits", Value: StringValue("123")},
		}
		require.NoError(t, p.Save(ctx, saved))

		loaded, err := p.Entries(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, len(saved))

		byPath := make(map[string]*Entry, len(loaded))
		for _, e := range loaded {
			byPath[e.Path] = e
		}
		for _, want := range saved {
			got, ok := byPath[want.Path]
			require.True(t, ok, want.Path)
			assert.Equal(t, want, got)
		}
	})

	t.Run("SaveUpdatesInPlace", func(t *testing.T) {
		store := newTestSQLiteStore(t, "props")
		p := NewEditableDocumentProvider(store)

		require.NoError(t, p.Save(ctx, []*Entry{{Path: "k", Value: IntValue(1), IsField: true}}))
		require.NoError(t, p.Save(ctx, []*Entry{{Path: "k", Value: IntValue(2)}}))

		loaded, err := p.Entries(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, IntValue(2), loaded[0].Value)
		assert.False(t, loaded[0].IsField)
	})

	t.Run("DuplicateRowsAreInconsistent", func(t *testing.T) {
		store := newTestSQLiteStore(t, "props")
		coll, err := store.Open(ctx)
		require.NoError(t, err)
		for range 2 {
			_, err := coll.Insert(ctx, Document{PropertyName: "dup", PropertyValue: IntValue(1)})
			require.NoError(t, err)
		}
		require.NoError(t, coll.Close())

		err = NewEditableDocumentProvider(store).Save(ctx, []*Entry{{Path: "dup", Value: IntValue(3)}})
		assert.ErrorIs(t, err, ErrStoreInconsistency)
	})

	t.Run("CollectionsAreSeparate", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "props.db")
		a := NewEditableDocumentProvider(NewSQLiteStore(dbPath, "alpha"))
		b := NewEditableDocumentProvider(NewSQLiteStore(dbPath, "beta"))

		require.NoError(t, a.Save(ctx, []*Entry{{Path: "x", Value: IntValue(1)}}))

		entries, err := b.Entries(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("EmptyCollectionName", func(t *testing.T) {
		_, err := newTestSQLiteStore(t, "").Open(ctx)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("InsertAssignsID", func(t *testing.T) {
		coll, err := newTestSQLiteStore(t, "props").Open(ctx)
		require.NoError(t, err)
		defer coll.Close()

		id, err := coll.Insert(ctx, Document{PropertyName: "k", PropertyValue: StringValue("v")})
		require.NoError(t, err)
		assert.Len(t, id, 36)

		found, err := coll.FindByName(ctx, "k")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, id, found[0].ID)
	})
}

func TestRowsToDocuments(t *testing.T) {
	_, err := rowsToDocuments([]sqliteDocument{{ID: "x", ValueKind: "decimal", ValueText: "1"}})
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = rowsToDocuments([]sqliteDocument{{ID: "x", ValueKind: "int", ValueText: "one"}})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}
