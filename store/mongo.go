// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/track360/server/models"
)

// MongoStore keeps records in two collections of one database.
type MongoStore struct {
	client       *mongo.Client
	unprocessed  *mongo.Collection
	processed    *mongo.Collection
	transactions bool
}

type unprocessedDoc struct {
	ID          primitive.ObjectID  `bson:"_id"`
	VideoURL    string              `bson:"videoUrl"`
	Location    models.Location     `bson:"location"`
	Processed   bool                `bson:"processed"`
	ProcessedID *primitive.ObjectID `bson:"processedId,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt"`
}

type processedDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	UnprocessedID     primitive.ObjectID `bson:"unprocessedId"`
	OriginalVideoURL  string             `bson:"originalVideoUrl"`
	ProcessedVideoURL string             `bson:"processedVideoUrl"`
	Location          models.Location    `bson:"location"`
	CreatedAt         time.Time          `bson:"createdAt"`
	ExtraData         bson.RawValue      `bson:"extraData,omitempty"`
}

// OpenMongo connects to uri and uses database name. Multi-document
// transactions require a replica set; pass transactions=false against a
// standalone server.
func OpenMongo(ctx context.Context, uri, name string, transactions bool) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := NewMongoStore(client, name, transactions)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStore wraps a connected client.
func NewMongoStore(client *mongo.Client, name string, transactions bool) *MongoStore {
	database := client.Database(name)
	return &MongoStore{
		client:       client,
		unprocessed:  database.Collection(models.CollectionUnprocessed),
		processed:    database.Collection(models.CollectionProcessed),
		transactions: transactions,
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.unprocessed.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "processed", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create unprocessed indexes: %w", err)
	}

	_, err = s.processed.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "unprocessedId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create processed indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUnprocessed(ctx context.Context, rec *models.UnprocessedRecord) error {
	if err := prepareUnprocessed(rec); err != nil {
		return err
	}
	oid, _ := primitive.ObjectIDFromHex(rec.ID)

	_, err := s.unprocessed.InsertOne(ctx, unprocessedDoc{
		ID:        oid,
		VideoURL:  rec.VideoURL,
		Location:  rec.Location,
		CreatedAt: rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert unprocessed record: %w", err)
	}
	return nil
}

func (d unprocessedDoc) record() models.UnprocessedRecord {
	rec := models.UnprocessedRecord{
		ID:        d.ID.Hex(),
		VideoURL:  d.VideoURL,
		Location:  d.Location,
		Processed: d.Processed,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.ProcessedID != nil {
		pid := d.ProcessedID.Hex()
		rec.ProcessedID = &pid
	}
	return rec
}

func (s *MongoStore) findUnprocessed(ctx context.Context, oid primitive.ObjectID) (*unprocessedDoc, error) {
	var doc unprocessedDoc
	err := s.unprocessed.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed record: %w", err)
	}
	return &doc, nil
}

func (s *MongoStore) GetUnprocessed(ctx context.Context, id string) (*models.UnprocessedRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	doc, err := s.findUnprocessed(ctx, oid)
	if err != nil {
		return nil, err
	}
	rec := doc.record()
	return &rec, nil
}

func (s *MongoStore) ListUnprocessed(ctx context.Context, status string, limit int) ([]models.UnprocessedRecord, error) {
	filter := bson.M{}
	switch status {
	case models.StatusPending:
		filter["processed"] = false
	case models.StatusProcessed:
		filter["processed"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.unprocessed.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed records: %w", err)
	}

	var docs []unprocessedDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode unprocessed records: %w", err)
	}

	records := make([]models.UnprocessedRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records, nil
}

// LinkProcessed runs inside a session transaction when transactions are
// enabled; otherwise the three steps run in sequence.
func (s *MongoStore) LinkProcessed(ctx context.Context, unprocessedID string, link ProcessedLink) (*models.ProcessedRecord, error) {
	oid, err := primitive.ObjectIDFromHex(unprocessedID)
	if err != nil {
		return nil, ErrInvalidID
	}

	extra, err := jsonToBSON(link.ExtraData)
	if err != nil {
		return nil, err
	}

	run := func(ctx context.Context) (*models.ProcessedRecord, error) {
		src, err := s.findUnprocessed(ctx, oid)
		if err != nil {
			return nil, err
		}
		srcRec := src.record()
		rec := newProcessedRecord(&srcRec, link)
		pid, _ := primitive.ObjectIDFromHex(rec.ID)

		_, err = s.processed.InsertOne(ctx, processedDoc{
			ID:                pid,
			UnprocessedID:     oid,
			OriginalVideoURL:  rec.OriginalVideoURL,
			ProcessedVideoURL: rec.ProcessedVideoURL,
			Location:          rec.Location,
			CreatedAt:         rec.CreatedAt,
			ExtraData:         extra,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert processed record: %w", err)
		}

		_, err = s.unprocessed.UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"processed": true, "processedId": pid}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to mark unprocessed record: %w", err)
		}
		return rec, nil
	}

	if !s.transactions {
		return run(ctx)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return run(sc)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.ProcessedRecord), nil
}

func (s *MongoStore) GetProcessed(ctx context.Context, id string) (*models.ProcessedRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var doc processedDoc
	err = s.processed.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query processed record: %w", err)
	}
	return doc.record()
}

func (s *MongoStore) ListProcessed(ctx context.Context) ([]models.ProcessedRecord, error) {
	cursor, err := s.processed.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query processed records: %w", err)
	}

	var docs []processedDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode processed records: %w", err)
	}

	records := make([]models.ProcessedRecord, 0, len(docs))
	for _, d := range docs {
		rec, err := d.record()
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (d processedDoc) record() (*models.ProcessedRecord, error) {
	extra, err := bsonToJSON(d.ExtraData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extra data of %s: %w", d.ID.Hex(), err)
	}
	return &models.ProcessedRecord{
		ID:                d.ID.Hex(),
		UnprocessedID:     d.UnprocessedID.Hex(),
		OriginalVideoURL:  d.OriginalVideoURL,
		ProcessedVideoURL: d.ProcessedVideoURL,
		Location:          d.Location,
		CreatedAt:         d.CreatedAt.UTC(),
		ExtraData:         extra,
	}, nil
}

func (s *MongoStore) CountVideos(ctx context.Context) (VideoCounts, error) {
	total, err := s.unprocessed.CountDocuments(ctx, bson.M{})
	if err != nil {
		return VideoCounts{}, fmt.Errorf("failed to count videos: %w", err)
	}
	processed, err := s.unprocessed.CountDocuments(ctx, bson.M{"processed": true})
	if err != nil {
		return VideoCounts{}, fmt.Errorf("failed to count processed videos: %w", err)
	}
	return VideoCounts{Total: int(total), Processed: int(processed)}, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// jsonToBSON stores extra data as a native document rather than a string so
// it stays queryable.
func jsonToBSON(raw json.RawMessage) (bson.RawValue, error) {
	if len(raw) == 0 {
		return bson.RawValue{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return bson.RawValue{}, fmt.Errorf("invalid extra data: %w", err)
	}

	t, data, err := bson.MarshalValue(v)
	if err != nil {
		return bson.RawValue{}, fmt.Errorf("failed to encode extra data: %w", err)
	}
	return bson.RawValue{Type: t, Value: data}, nil
}

func bsonToJSON(v bson.RawValue) (json.RawMessage, error) {
	if v.IsZero() {
		return nil, nil
	}

	out, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: v}}, false, false)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(out, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.V, nil
}
