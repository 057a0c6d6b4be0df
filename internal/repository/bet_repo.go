package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"kenolive/internal/model"
)

// BetRepo stores each player's selection for a match
type BetRepo interface {
	Create(ctx context.Context, bet *model.Bet) error
}

type betRepo struct {
	collection *mongo.Collection
}

// NewBetRepo creates a new bet repository
func NewBetRepo(db *mongo.Database) BetRepo {
	return &betRepo{
		collection: db.Collection("bets"),
	}
}

func (r *betRepo) Create(ctx context.Context, bet *model.Bet) error {
	if bet.ID == "" {
		bet.ID = primitive.NewObjectID().Hex()
	}
	if bet.ChosenNumbers == nil {
		bet.ChosenNumbers = []int{}
	}

	_, err := r.collection.InsertOne(ctx, bet)
	return err
}
