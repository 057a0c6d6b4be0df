package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kenolive/internal/model"
	"kenolive/internal/repository"
)

type playerRepo struct {
	db *gorm.DB
}

func (r *playerRepo) Create(ctx context.Context, player *model.Player) error {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.RegisteredAt.IsZero() {
		player.RegisteredAt = time.Now()
	}

	err := r.db.WithContext(ctx).Create(newPlayerRow(player)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *playerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *playerRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []playerRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPlayers(rows), nil
}

func (r *playerRepo) GetByNickname(ctx context.Context, nickname string) (*model.Player, error) {
	return r.first(ctx, "nickname = ?", nickname)
}

func (r *playerRepo) GetByUsername(ctx context.Context, username string) (*model.Player, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *playerRepo) GetByEmail(ctx context.Context, email string) (*model.Player, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *playerRepo) first(ctx context.Context, query string, arg interface{}) (*model.Player, error) {
	var row playerRow
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (r *playerRepo) IncrementTotals(ctx context.Context, id string, points int) error {
	return r.db.WithContext(ctx).
		Model(&playerRow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_points":   gorm.Expr("total_points + ?", points),
			"matches_played": gorm.Expr("matches_played + 1"),
		}).Error
}

func (r *playerRepo) ListTop(ctx context.Context, limit int) ([]*model.Player, error) {
	var rows []playerRow
	if err := r.db.WithContext(ctx).
		Order("total_points DESC").
		Order("registered_at").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPlayers(rows), nil
}

func toPlayers(rows []playerRow) []*model.Player {
	players := make([]*model.Player, 0, len(rows))
	for i := range rows {
		players = append(players, rows[i].toModel())
	}
	return players
}
