package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kenolive/internal/model"
)

// PlayerRepo handles durable player accounts and their totals
type PlayerRepo interface {
	Create(ctx context.Context, player *model.Player) error
	GetByID(ctx context.Context, id string) (*model.Player, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Player, error)
	GetByNickname(ctx context.Context, nickname string) (*model.Player, error)
	GetByUsername(ctx context.Context, username string) (*model.Player, error)
	GetByEmail(ctx context.Context, email string) (*model.Player, error)
	IncrementTotals(ctx context.Context, id string, points int) error
	ListTop(ctx context.Context, limit int) ([]*model.Player, error)
}

type playerRepo struct {
	collection *mongo.Collection
}

// NewPlayerRepo creates a new player repository
func NewPlayerRepo(db *mongo.Database) PlayerRepo {
	return &playerRepo{
		collection: db.Collection("players"),
	}
}

func (r *playerRepo) Create(ctx context.Context, player *model.Player) error {
	// Generate ObjectID if not provided
	if player.ID == "" {
		player.ID = primitive.NewObjectID().Hex()
	}
	if player.RegisteredAt.IsZero() {
		player.RegisteredAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, player)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *playerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *playerRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*model.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepo) GetByNickname(ctx context.Context, nickname string) (*model.Player, error) {
	return r.findOne(ctx, bson.M{"nickname": nickname})
}

func (r *playerRepo) GetByUsername(ctx context.Context, username string) (*model.Player, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *playerRepo) GetByEmail(ctx context.Context, email string) (*model.Player, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *playerRepo) findOne(ctx context.Context, filter bson.M) (*model.Player, error) {
	var player model.Player
	err := r.collection.FindOne(ctx, filter).Decode(&player)
	if err == mongo.ErrNoDocuments {
		return nil, nil // Player not found
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *playerRepo) IncrementTotals(ctx context.Context, id string, points int) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"totalPoints": points, "matchesPlayed": 1}},
	)
	return err
}

func (r *playerRepo) ListTop(ctx context.Context, limit int) ([]*model.Player, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "totalPoints", Value: -1}, {Key: "registeredAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*model.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}
