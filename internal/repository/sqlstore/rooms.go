package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kenolive/internal/model"
)

type roomRepo struct {
	db *gorm.DB
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := newRoomRow(room)
		// Select("*") so a false Active is written instead of the column default
		if err := tx.Select("*").Create(row).Error; err != nil {
			return err
		}
		for _, playerID := range room.PlayerIDs {
			if err := addPlayer(tx, room.ID, playerID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	return r.find(ctx, r.db.Where("id = ?", id))
}

func (r *roomRepo) GetByCode(ctx context.Context, code string) (*model.Room, error) {
	return r.find(ctx, r.db.Where("code = ?", code))
}

func (r *roomRepo) GetActive(ctx context.Context) (*model.Room, error) {
	return r.find(ctx, r.db.Where("active = ?", true).Order("created_at"))
}

func (r *roomRepo) find(ctx context.Context, query *gorm.DB) (*model.Room, error) {
	var row roomRow
	if err := query.WithContext(ctx).First(&row).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var members []roomPlayerRow
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", row.ID).
		Order("joined_at").
		Find(&members).Error; err != nil {
		return nil, err
	}

	return row.toModel(members), nil
}

func (r *roomRepo) AddPlayer(ctx context.Context, roomID, playerID string) error {
	return addPlayer(r.db.WithContext(ctx), roomID, playerID)
}

func addPlayer(tx *gorm.DB, roomID, playerID string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&roomPlayerRow{
		RoomID:   roomID,
		PlayerID: playerID,
		JoinedAt: time.Now(),
	}).Error
}

func (r *roomRepo) RemovePlayer(ctx context.Context, roomID, playerID string) error {
	return r.db.WithContext(ctx).
		Where("room_id = ? AND player_id = ?", roomID, playerID).
		Delete(&roomPlayerRow{}).Error
}

func (r *roomRepo) SetActive(ctx context.Context, roomID string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&roomRow{}).
		Where("id = ?", roomID).
		Update("active", active).Error
}
