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

// RoomRepo handles durable room records and their player rosters
type RoomRepo interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByCode(ctx context.Context, code string) (*model.Room, error)
	GetActive(ctx context.Context) (*model.Room, error)
	AddPlayer(ctx context.Context, roomID, playerID string) error
	RemovePlayer(ctx context.Context, roomID, playerID string) error
	SetActive(ctx context.Context, roomID string, active bool) error
}

type roomRepo struct {
	collection *mongo.Collection
}

// NewRoomRepo creates a new room repository
func NewRoomRepo(db *mongo.Database) RoomRepo {
	return &roomRepo{
		collection: db.Collection("rooms"),
	}
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	if room.ID == "" {
		room.ID = primitive.NewObjectID().Hex()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	if room.PlayerIDs == nil {
		room.PlayerIDs = []string{}
	}

	_, err := r.collection.InsertOne(ctx, room)
	return err
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *roomRepo) GetByCode(ctx context.Context, code string) (*model.Room, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

// GetActive returns the oldest active room, the one every player is sent to
func (r *roomRepo) GetActive(ctx context.Context) (*model.Room, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.findOne(ctx, bson.M{"active": true}, opts)
}

func (r *roomRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*model.Room, error) {
	var room model.Room
	err := r.collection.FindOne(ctx, filter, opts...).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) AddPlayer(ctx context.Context, roomID, playerID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": roomID},
		bson.M{"$addToSet": bson.M{"playerIds": playerID}},
	)
	return err
}

func (r *roomRepo) RemovePlayer(ctx context.Context, roomID, playerID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": roomID},
		bson.M{"$pull": bson.M{"playerIds": playerID}},
	)
	return err
}

func (r *roomRepo) SetActive(ctx context.Context, roomID string, active bool) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": roomID},
		bson.M{"$set": bson.M{"active": active}},
	)
	return err
}
