// FILE: lixenwraith/propbind/mongo_store.go
package propbind

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoDocument is the BSON layout of a stored property.
type mongoDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	PropertyName  string             `bson:"propertyName"`
	PropertyValue any                `bson:"propertyValue"`
	IsStatic      bool               `bson:"isStatic"`
	IsField       bool               `bson:"isField"`
}

// MongoStore keeps properties in a MongoDB collection. Values are stored as
// native BSON int64, double, bool or string.
type MongoStore struct {
	uri        string
	database   string
	collection string
}

var _ DocumentStore = (*MongoStore)(nil)

// NewMongoStore returns a store over database.collection at uri.
func NewMongoStore(uri, database, collection string) *MongoStore {
	return &MongoStore{uri: uri, database: database, collection: collection}
}

// Open connects a client and verifies the server is reachable.
func (s *MongoStore) Open(ctx context.Context) (Collection, error) {
	connectCtx, cancel := context.WithTimeout(ctx, DefaultConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to '%s': %w", ErrStoreUnavailable, s.uri, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: failed to reach '%s': %w", ErrStoreUnavailable, s.uri, err)
	}

	return &mongoCollection{
		client: client,
		coll:   client.Database(s.database).Collection(s.collection),
	}, nil
}

type mongoCollection struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func (c *mongoCollection) FindAll(ctx context.Context) ([]Document, error) {
	return c.find(ctx, bson.M{})
}

func (c *mongoCollection) FindByName(ctx context.Context, name string) ([]Document, error) {
	return c.find(ctx, bson.M{"propertyName": name})
}

func (c *mongoCollection) find(ctx context.Context, filter bson.M) ([]Document, error) {
	cursor, err := c.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var raw []mongoDocument
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(raw))
	for _, r := range raw {
		value, err := valueFromNative(r.PropertyValue)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", r.ID.Hex(), err)
		}
		docs = append(docs, Document{
			ID:            r.ID.Hex(),
			PropertyName:  r.PropertyName,
			PropertyValue: value,
			IsStatic:      r.IsStatic,
			IsField:       r.IsField,
		})
	}
	return docs, nil
}

func (c *mongoCollection) Insert(ctx context.Context, doc Document) (string, error) {
	result, err := c.coll.InsertOne(ctx, mongoDocument{
		PropertyName:  doc.PropertyName,
		PropertyValue: doc.PropertyValue.Any(),
		IsStatic:      doc.IsStatic,
		IsField:       doc.IsField,
	})
	if err != nil {
		return "", err
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return id.Hex(), nil
}

func (c *mongoCollection) Update(ctx context.Context, doc Document) (int64, error) {
	id, err := primitive.ObjectIDFromHex(doc.ID)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q: %w", doc.ID, err)
	}

	result, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"propertyName":  doc.PropertyName,
		"propertyValue": doc.PropertyValue.Any(),
		"isStatic":      doc.IsStatic,
		"isField":       doc.IsField,
	}})
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (c *mongoCollection) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultConnectTimeout)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// valueFromNative narrows a decoded BSON value to one of the four kinds.
func valueFromNative(v any) (Value, error) {
	switch n := v.(type) {
	case int32:
		return IntValue(int64(n)), nil
	case int64:
		return IntValue(n), nil
	case int:
		return IntValue(int64(n)), nil
	case float32:
		return FloatValue(float64(n)), nil
	case float64:
		return FloatValue(n), nil
	case bool:
		return BoolValue(n), nil
	case string:
		return StringValue(n), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}
