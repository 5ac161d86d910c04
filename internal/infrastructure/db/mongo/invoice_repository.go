package mongo

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

type InvoiceRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{
		col:      db.Collection(collectionInvoices),
		counters: db.Collection(collectionCounters),
	}
}

// List returns every invoice, newest first.
func (r *InvoiceRepository) List(ctx context.Context) ([]*domain.Invoice, error) {
	return r.find(ctx, bson.M{})
}

func (r *InvoiceRepository) IssuedBetween(ctx context.Context, from, to time.Time) ([]*domain.Invoice, error) {
	return r.find(ctx, bson.M{"issue_date": bson.M{"$gte": from, "$lt": to}})
}

func (r *InvoiceRepository) find(ctx context.Context, filter bson.M) ([]*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "issue_date", Value: -1}, {Key: "numero", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("list invoices", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.Invoice, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrapErr("decode invoices", err)
	}
	return out, nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var inv domain.Invoice
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return nil, wrapErr("find invoice "+id, err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) Insert(ctx context.Context, inv *domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, inv)
	return wrapErr("insert invoice", err)
}

func (r *InvoiceRepository) Replace(ctx context.Context, inv *domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": inv.ID}, inv)
	if err != nil {
		return wrapErr("replace invoice", err)
	}
	if res.MatchedCount == 0 {
		return wrapErr("replace invoice "+inv.ID, mongo.ErrNoDocuments)
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr("delete invoice", err)
	}
	if res.DeletedCount == 0 {
		return wrapErr("delete invoice "+id, mongo.ErrNoDocuments)
	}
	return nil
}

// NextSequence increments the counter of year, creating it on first use.
func (r *InvoiceRepository) NextSequence(ctx context.Context, year int) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "invoice-" + strconv.Itoa(year)},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, wrapErr("next invoice number", err)
	}
	return doc.Seq, nil
}

func (r *InvoiceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "numero", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "issue_date", Value: -1}}},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
