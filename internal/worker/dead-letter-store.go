package worker

import (
	"context"

	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type DeadLetterStore interface {
	Archive(ctx context.Context, job entity.DeadJob) error
	Stats(ctx context.Context) (map[string]int64, error)
}

type MongoDeadLetterStore struct {
	Collection *mongo.Collection
}

func NewMongoDeadLetterStore(client *mongo.Client, database, collection string) *MongoDeadLetterStore {
	return &MongoDeadLetterStore{
		Collection: client.Database(database).Collection(collection),
	}
}

func (s *MongoDeadLetterStore) Archive(ctx context.Context, job entity.DeadJob) error {
	_, err := s.Collection.InsertOne(ctx, job)
	return err
}

// Stats counts archived jobs per status.
func (s *MongoDeadLetterStore) Stats(ctx context.Context) (map[string]int64, error) {
	pipeline := bson.A{
		bson.M{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := s.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		stats[row.Status] = row.Count
	}

	return stats, cursor.Err()
}
