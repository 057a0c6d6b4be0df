package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kenolive/internal/model"
)

type matchRepo struct {
	db *gorm.DB
}

func (r *matchRepo) Create(ctx context.Context, match *model.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if match.StartedAt.IsZero() {
		match.StartedAt = time.Now()
	}

	return r.db.WithContext(ctx).Create(newMatchRow(match)).Error
}

type betRepo struct {
	db *gorm.DB
}

func (r *betRepo) Create(ctx context.Context, bet *model.Bet) error {
	if bet.ID == "" {
		bet.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(newBetRow(bet)).Error
}
