// FILE: lixenwraith/propbind/sqlite_store.go
package propbind

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver
)

// sqliteDriverName is the database/sql driver registered by modernc.org/sqlite.
const sqliteDriverName = "sqlite"

// sqliteDocument is the row layout of a collection table.
type sqliteDocument struct {
	ID           string `gorm:"column:id;primaryKey"`
	PropertyName string `gorm:"column:property_name;not null"`
	ValueKind    string `gorm:"column:value_kind;not null"`
	ValueText    string `gorm:"column:value_text"`
	IsStatic     bool   `gorm:"column:is_static"`
	IsField      bool   `gorm:"column:is_field"`
}

// SQLiteStore is an embedded document store: one SQLite database file, one
// table per collection.
type SQLiteStore struct {
	path       string
	collection string
}

var _ DocumentStore = (*SQLiteStore)(nil)

// NewSQLiteStore returns a store over the collection table in the database
// file at path. The file and table are created on first open.
func NewSQLiteStore(path, collection string) *SQLiteStore {
	return &SQLiteStore{path: path, collection: collection}
}

// Open connects to the database and ensures the collection table exists.
func (s *SQLiteStore) Open(ctx context.Context) (Collection, error) {
	if s.collection == "" {
		return nil, fmt.Errorf("%w: collection name cannot be empty", ErrStoreUnavailable)
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: sqliteDriverName,
		DSN:        s.path,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database '%s': %w", ErrStoreUnavailable, s.path, err)
	}

	coll := &sqliteCollection{db: db, table: s.collection}
	if err := coll.scope(ctx).AutoMigrate(&sqliteDocument{}); err != nil {
		coll.Close()
		return nil, fmt.Errorf("%w: failed to prepare collection '%s': %w", ErrStoreUnavailable, s.collection, err)
	}
	return coll, nil
}

type sqliteCollection struct {
	db    *gorm.DB
	table string
}

func (c *sqliteCollection) scope(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx).Table(c.table)
}

func (c *sqliteCollection) FindAll(ctx context.Context) ([]Document, error) {
	var rows []sqliteDocument
	if err := c.scope(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToDocuments(rows)
}

func (c *sqliteCollection) FindByName(ctx context.Context, name string) ([]Document, error) {
	var rows []sqliteDocument
	if err := c.scope(ctx).Where("property_name = ?", name).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToDocuments(rows)
}

func (c *sqliteCollection) Insert(ctx context.Context, doc Document) (string, error) {
	row := documentToRow(doc)
	row.ID = uuid.NewString()

	result := c.scope(ctx).Create(&row)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected != 1 {
		return "", nil
	}
	return row.ID, nil
}

func (c *sqliteCollection) Update(ctx context.Context, doc Document) (int64, error) {
	row := documentToRow(doc)
	// A map keeps zero values such as false flags in the update.
	result := c.scope(ctx).Where("id = ?", doc.ID).Updates(map[string]any{
		"property_name": row.PropertyName,
		"value_kind":    row.ValueKind,
		"value_text":    row.ValueText,
		"is_static":     row.IsStatic,
		"is_field":      row.IsField,
	})
	return result.RowsAffected, result.Error
}

func (c *sqliteCollection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func documentToRow(doc Document) sqliteDocument {
	return sqliteDocument{
		ID:           doc.ID,
		PropertyName: doc.PropertyName,
		ValueKind:    doc.PropertyValue.Kind().String(),
		ValueText:    doc.PropertyValue.String(),
		IsStatic:     doc.IsStatic,
		IsField:      doc.IsField,
	}
}

func rowsToDocuments(rows []sqliteDocument) ([]Document, error) {
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		kind, err := parseKind(row.ValueKind)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", row.ID, err)
		}
		value, err := decodeValue(kind, row.ValueText)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", row.ID, err)
		}
		docs = append(docs, Document{
			ID:            row.ID,
			PropertyName:  row.PropertyName,
			PropertyValue: value,
			IsStatic:      row.IsStatic,
			IsField:       row.IsField,
		})
	}
	return docs, nil
}
