package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStorage keeps events in a MongoDB collection.
type MongoStorage struct {
	coll *mongo.Collection
}

func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	if collection == "" {
		collection = "audit_events"
	}
	return &MongoStorage{coll: db.Collection(collection)}
}

type mongoEvent struct {
	ID         string         `bson:"_id"`
	TenantID   string         `bson:"tenant_id,omitempty"`
	Actor      string         `bson:"actor,omitempty"`
	Action     string         `bson:"action"`
	Resource   string         `bson:"resource,omitempty"`
	ResourceID string         `bson:"resource_id,omitempty"`
	Result     string         `bson:"result"`
	Error      string         `bson:"error,omitempty"`
	RequestID  string         `bson:"request_id,omitempty"`
	Metadata   map[string]any `bson:"metadata,omitempty"`
	CreatedAt  time.Time      `bson:"created_at"`
}

func toMongo(e Event) mongoEvent {
	return mongoEvent{
		ID:         e.ID.String(),
		TenantID:   e.TenantID,
		Actor:      e.Actor,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		Result:     string(e.Result),
		Error:      e.Error,
		RequestID:  e.RequestID,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
}

func (m mongoEvent) event() Event {
	id, _ := uuid.Parse(m.ID)
	return Event{
		ID:         id,
		TenantID:   m.TenantID,
		Actor:      m.Actor,
		Action:     m.Action,
		Resource:   m.Resource,
		ResourceID: m.ResourceID,
		Result:     Result(m.Result),
		Error:      m.Error,
		RequestID:  m.RequestID,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}

func (s *MongoStorage) Store(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]any, 0, len(events))
	for _, e := range events {
		docs = append(docs, toMongo(e))
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return err
}

func (s *MongoStorage) Query(ctx context.Context, c Criteria) ([]Event, error) {
	filter := bson.M{}
	if c.TenantID != "" {
		filter["tenant_id"] = c.TenantID
	}
	if c.Action != "" {
		filter["action"] = c.Action
	}
	if c.Result != "" {
		filter["result"] = string(c.Result)
	}
	created := bson.M{}
	if !c.Since.IsZero() {
		created["$gte"] = c.Since
	}
	if !c.Until.IsZero() {
		created["$lt"] = c.Until
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if c.Limit > 0 {
		opts.SetLimit(int64(c.Limit))
	}
	if c.Offset > 0 {
		opts.SetSkip(int64(c.Offset))
	}

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []mongoEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.event())
	}
	return events, nil
}

// EnsureIndexes creates the indexes Query relies on.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}}},
	})
	return err
}
