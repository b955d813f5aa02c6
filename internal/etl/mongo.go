package etl

import (
	"context"
	"time"

	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/BartekS5/posts-etl/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLoader mirrors the output file into a collection, replacing
// whatever the previous run left there.
type MongoLoader struct {
	Collection *mongo.Collection
	Timeout    time.Duration
}

func NewMongoLoader(coll *mongo.Collection) *MongoLoader {
	return &MongoLoader{
		Collection: coll,
		Timeout:    30 * time.Second,
	}
}

func (m *MongoLoader) Load(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	del, err := m.Collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return errors.Wrapf(err, "clear collection %s", m.Collection.Name())
	}

	docs := make([]interface{}, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, p)
	}
	res, err := m.Collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return errors.Wrapf(err, "insert posts into %s", m.Collection.Name())
	}

	logger.Infof("Mongo replace on %s: removed %d, inserted %d", m.Collection.Name(), del.DeletedCount, len(res.InsertedIDs))
	return nil
}
