package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.UserProfile, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrapErr("decode users", err)
	}
	return out, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.UserProfile
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, wrapErr("find user", err)
	}
	return &u, nil
}

func (r *UserRepository) Insert(ctx context.Context, u *domain.UserProfile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	u.Email = domain.NormalizeEmail(u.Email)
	_, err := r.col.InsertOne(ctx, u)
	return wrapErr("insert user", err)
}

// CompleteSignUp matches on is_active and on the missing password so a
// deactivation or a second sign-up that landed first wins.
func (r *UserRepository) CompleteSignUp(ctx context.Context, id, passwordHash, fullName string, at time.Time) (*domain.UserProfile, error) {
	filter := bson.M{
		"_id":           id,
		"is_active":     true,
		"password_hash": bson.M{"$in": bson.A{nil, ""}},
	}
	set := bson.M{"password_hash": passwordHash, "updated_at": at}
	if fullName != "" {
		set["full_name"] = fullName
	}
	u, err := r.set(ctx, "complete sign-up", filter, set)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("complete sign-up %s: %w", id, domain.ErrNotAuthorized)
	}
	return u, err
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) (*domain.UserProfile, error) {
	return r.set(ctx, "set user active", bson.M{"_id": id}, bson.M{"is_active": active, "updated_at": at})
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role domain.Role, at time.Time) (*domain.UserProfile, error) {
	return r.set(ctx, "set user role", bson.M{"_id": id}, bson.M{"role": role, "updated_at": at})
}

func (r *UserRepository) set(ctx context.Context, op string, filter, fields bson.M) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u domain.UserProfile
	if err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&u); err != nil {
		return nil, wrapErr(op, err)
	}
	return &u, nil
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
