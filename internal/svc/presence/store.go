package presence

import (
	"context"
	"errors"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/svc/mongo"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrRecordNotFound is returned by Find for users who have never reported
// activity. Callers treat such users as offline, not as a failure.
var ErrRecordNotFound = errors.New("presence record not found")

// Store persists one PresenceRecord per user, last write wins. The presence
// service is the only writer; any number of readers may query concurrently.
type Store interface {
	UpsertMany(ctx context.Context, records []model.PresenceRecord) error
	Find(ctx context.Context, userID string) (model.PresenceRecord, error)
	FindMany(ctx context.Context, userIDs []string) ([]model.PresenceRecord, error)
	FindLastSeenBetween(ctx context.Context, from int64, to int64) ([]model.PresenceRecord, error)
}

type mongoStore struct {
	mongo mongo.Instance
}

func NewMongoStore(ctx context.Context, inst mongo.Instance) Store {
	_, err := inst.Collection(mongo.CollectionNameUserOnline).Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.M{"user_id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		zap.S().Warnw("presence store, failed to ensure user_id index",
			"error", err,
		)
	}

	return &mongoStore{mongo: inst}
}

func (s *mongoStore) UpsertMany(ctx context.Context, records []model.PresenceRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]mongodriver.WriteModel, len(records))
	for i, rec := range records {
		models[i] = mongodriver.NewReplaceOneModel().
			SetFilter(bson.M{"user_id": rec.UserID}).
			SetReplacement(rec).
			SetUpsert(true)
	}

	_, err := s.mongo.Collection(mongo.CollectionNameUserOnline).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))

	return err
}

func (s *mongoStore) Find(ctx context.Context, userID string) (model.PresenceRecord, error) {
	rec := model.PresenceRecord{}

	err := s.mongo.Collection(mongo.CollectionNameUserOnline).
		FindOne(ctx, bson.M{"user_id": userID}).
		Decode(&rec)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return rec, ErrRecordNotFound
		}

		return rec, err
	}

	return rec, nil
}

func (s *mongoStore) FindMany(ctx context.Context, userIDs []string) ([]model.PresenceRecord, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	cur, err := s.mongo.Collection(mongo.CollectionNameUserOnline).
		Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, err
	}

	records := make([]model.PresenceRecord, 0, len(userIDs))
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *mongoStore) FindLastSeenBetween(ctx context.Context, from int64, to int64) ([]model.PresenceRecord, error) {
	cur, err := s.mongo.Collection(mongo.CollectionNameUserOnline).
		Find(ctx, bson.M{"last_seen": bson.M{"$gt": from, "$lte": to}})
	if err != nil {
		return nil, err
	}

	records := []model.PresenceRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}
