package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"kenolive/internal/model"
)

// MatchRepo stores completed draws
type MatchRepo interface {
	Create(ctx context.Context, match *model.Match) error
}

type matchRepo struct {
	collection *mongo.Collection
}

// NewMatchRepo creates a new match repository
func NewMatchRepo(db *mongo.Database) MatchRepo {
	return &matchRepo{
		collection: db.Collection("matches"),
	}
}

func (r *matchRepo) Create(ctx context.Context, match *model.Match) error {
	if match.ID == "" {
		match.ID = primitive.NewObjectID().Hex()
	}
	if match.StartedAt.IsZero() {
		match.StartedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, match)
	return err
}
