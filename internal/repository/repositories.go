package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when a unique field (nickname, email, code) is taken
var ErrDuplicate = errors.New("duplicate key")

// Repositories bundles the durable stores the services consume
type Repositories struct {
	Rooms   RoomRepo
	Players PlayerRepo
	Matches MatchRepo
	Bets    BetRepo
}

// NewMongo wires every repository to collections of db
func NewMongo(db *mongo.Database) *Repositories {
	return &Repositories{
		Rooms:   NewRoomRepo(db),
		Players: NewPlayerRepo(db),
		Matches: NewMatchRepo(db),
		Bets:    NewBetRepo(db),
	}
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		"players": {
			{Keys: bson.D{{Key: "nickname", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "totalPoints", Value: -1}}},
		},
		"rooms": {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		"bets": {
			{Keys: bson.D{{Key: "matchId", Value: 1}}},
			{Keys: bson.D{{Key: "playerId", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
