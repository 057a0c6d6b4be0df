package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"kenolive/internal/cache"
	"kenolive/internal/logger"
	"kenolive/internal/model"
	"kenolive/internal/repository"
)

// RankingService builds the global ranking by cumulative points
type RankingService struct {
	playerRepo  repository.PlayerRepo
	leaderboard cache.LeaderboardCache
}

// NewRankingService creates a new ranking service
func NewRankingService(playerRepo repository.PlayerRepo, leaderboard cache.LeaderboardCache) *RankingService {
	return &RankingService{
		playerRepo:  playerRepo,
		leaderboard: leaderboard,
	}
}

// Top returns up to limit players, best first. The Redis leaderboard is
// preferred; the durable store answers when it is empty or unreachable.
func (s *RankingService) Top(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	if s.leaderboard != nil {
		entries, err := s.leaderboard.GetTop(ctx, limit)
		if err != nil {
			logger.Warnf("leaderboard unavailable, falling back to store: %v", err)
		} else if len(entries) > 0 {
			ranking := make([]model.RankingEntry, len(entries))
			for i, e := range entries {
				ranking[i] = rankingEntry(e.Rank, e.Nickname, e.Score, e.MatchesPlayed)
			}
			return ranking, nil
		}
	}

	players, err := s.playerRepo.ListTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	ranking := make([]model.RankingEntry, len(players))
	for i, p := range players {
		ranking[i] = rankingEntry(i+1, p.Nickname, p.TotalPoints, p.MatchesPlayed)
	}
	return ranking, nil
}

func rankingEntry(rank int, nickname string, points, played int) model.RankingEntry {
	return model.RankingEntry{
		Rank:          rank,
		Nickname:      nickname,
		TotalPoints:   points,
		MatchesPlayed: played,
		Average:       Average(points, played),
	}
}

// Average is points per match rounded to two decimals, "0.00" when unplayed
func Average(points, played int) string {
	if played <= 0 {
		return decimal.Zero.StringFixed(2)
	}
	return decimal.NewFromInt(int64(points)).
		DivRound(decimal.NewFromInt(int64(played)), 2).
		StringFixed(2)
}
