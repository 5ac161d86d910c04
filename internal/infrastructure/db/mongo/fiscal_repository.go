package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

type FiscalRepository struct {
	col *mongo.Collection
}

func NewFiscalRepository(db *mongo.Database) *FiscalRepository {
	return &FiscalRepository{col: db.Collection(collectionDeadlines)}
}

func (r *FiscalRepository) List(ctx context.Context) ([]*domain.FiscalDeadline, error) {
	return r.find(ctx, bson.M{}, options.Find())
}

func (r *FiscalRepository) From(ctx context.Context, from time.Time, limit int) ([]*domain.FiscalDeadline, error) {
	return r.find(ctx, bson.M{"date": bson.M{"$gte": from}}, options.Find().SetLimit(int64(limit)))
}

func (r *FiscalRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.FiscalDeadline, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts.SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, wrapErr("list deadlines", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.FiscalDeadline, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrapErr("decode deadlines", err)
	}
	return out, nil
}

func (r *FiscalRepository) Insert(ctx context.Context, d *domain.FiscalDeadline) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, d)
	return wrapErr("insert deadline", err)
}

func (r *FiscalRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr("delete deadline", err)
	}
	if res.DeletedCount == 0 {
		return wrapErr("delete deadline "+id, mongo.ErrNoDocuments)
	}
	return nil
}

func (r *FiscalRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}})
	return err
}
