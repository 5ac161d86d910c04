package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

func TestWrapErr(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"no documents", mongo.ErrNoDocuments, domain.ErrNotFound},
		{"duplicate key", dup, domain.ErrConflict},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), domain.ErrTransport},
		{"disconnected", mongo.ErrClientDisconnected, domain.ErrTransport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := wrapErr("op", tc.in); !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
	if wrapErr("op", nil) != nil {
		t.Fatal("nil must stay nil")
	}
	other := errors.New("boom")
	if got := wrapErr("op", other); !errors.Is(got, other) {
		t.Fatalf("unknown errors must stay wrapped, got %v", got)
	}
}

func TestClientRepository_WithMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id decodes document", func(mt *mtest.T) {
		created := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "test.clients", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "nom_commercial", Value: "Atlas"},
			{Key: "statut", Value: "Actif"},
			{Key: "created_at", Value: created},
		}))

		repo := NewClientRepository(mt.DB)
		c, err := repo.FindByID(context.Background(), "c1")
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if c.NomCommercial != "Atlas" || c.Statut != domain.ClientActive || !c.CreatedAt.Equal(created) {
			mt.Fatalf("unexpected client: %+v", c)
		}
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.clients", mtest.FirstBatch))

		_, err := NewClientRepository(mt.DB).FindByID(context.Background(), "missing")
		if !errors.Is(err, domain.ErrNotFound) {
			mt.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("duplicate ice is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := NewClientRepository(mt.DB).Insert(context.Background(), &domain.Client{ID: "c2", NomCommercial: "Atlas"})
		if !errors.Is(err, domain.ErrConflict) {
			mt.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	mt.Run("delete of absent client", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		err := NewClientRepository(mt.DB).Delete(context.Background(), "missing")
		if !errors.Is(err, domain.ErrNotFound) {
			mt.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestInvoiceRepository_NextSequence(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns incremented counter", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{{Key: "_id", Value: "invoice-2025"}, {Key: "seq", Value: int64(7)}}},
		})

		seq, err := NewInvoiceRepository(mt.DB).NextSequence(context.Background(), 2025)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if seq != 7 {
			mt.Fatalf("expected 7, got %d", seq)
		}
	})
}

func TestUserRepository_FieldSetters(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("set active returns stored profile", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: "u1"},
				{Key: "email", Value: "nadia@cabinet.ma"},
				{Key: "role", Value: "employee"},
				{Key: "is_active", Value: false},
			}},
		})

		u, err := NewUserRepository(mt.DB).SetActive(context.Background(), "u1", false, time.Now())
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if u.ID != "u1" || u.IsActive {
			mt.Fatalf("unexpected profile: %+v", u)
		}
	})

	mt.Run("sign-up on inactive or registered profile is refused", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := NewUserRepository(mt.DB).CompleteSignUp(context.Background(), "u1", "hash", "", time.Now())
		if !errors.Is(err, domain.ErrNotAuthorized) {
			mt.Fatalf("expected ErrNotAuthorized, got %v", err)
		}
	})

	mt.Run("set role of absent user", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := NewUserRepository(mt.DB).SetRole(context.Background(), "ghost", domain.RoleAdmin, time.Now())
		if !errors.Is(err, domain.ErrNotFound) {
			mt.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
