package sqlstore

import (
	"time"

	"gorm.io/datatypes"

	"kenolive/internal/model"
)

type playerRow struct {
	ID            string `gorm:"primaryKey;size:36"`
	Username      string `gorm:"uniqueIndex;size:150;not null"`
	Email         string `gorm:"uniqueIndex;size:254;not null"`
	PasswordHash  string `gorm:"not null"`
	Nickname      string `gorm:"uniqueIndex;size:50;not null"`
	TotalPoints   int    `gorm:"index;not null;default:0"`
	MatchesPlayed int    `gorm:"not null;default:0"`
	RegisteredAt  time.Time
}

func (playerRow) TableName() string { return "players" }

func newPlayerRow(p *model.Player) *playerRow {
	return &playerRow{
		ID:            p.ID,
		Username:      p.Username,
		Email:         p.Email,
		PasswordHash:  p.PasswordHash,
		Nickname:      p.Nickname,
		TotalPoints:   p.TotalPoints,
		MatchesPlayed: p.MatchesPlayed,
		RegisteredAt:  p.RegisteredAt,
	}
}

func (r *playerRow) toModel() *model.Player {
	return &model.Player{
		ID:            r.ID,
		Username:      r.Username,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		Nickname:      r.Nickname,
		TotalPoints:   r.TotalPoints,
		MatchesPlayed: r.MatchesPlayed,
		RegisteredAt:  r.RegisteredAt,
	}
}

type roomRow struct {
	ID         string `gorm:"primaryKey;size:36"`
	Code       string `gorm:"uniqueIndex;size:10;not null"`
	CreatorID  string `gorm:"size:36;not null"`
	MaxPlayers int    `gorm:"not null;default:10"`
	Active     bool   `gorm:"index;not null;default:true"`
	CreatedAt  time.Time
}

func (roomRow) TableName() string { return "rooms" }

func newRoomRow(room *model.Room) *roomRow {
	return &roomRow{
		ID:         room.ID,
		Code:       room.Code,
		CreatorID:  room.CreatorID,
		MaxPlayers: room.MaxPlayers,
		Active:     room.Active,
		CreatedAt:  room.CreatedAt,
	}
}

// toModel builds the room with its roster in join order
func (r *roomRow) toModel(members []roomPlayerRow) *model.Room {
	playerIDs := make([]string, 0, len(members))
	for _, m := range members {
		playerIDs = append(playerIDs, m.PlayerID)
	}
	return &model.Room{
		ID:         r.ID,
		Code:       r.Code,
		CreatorID:  r.CreatorID,
		PlayerIDs:  playerIDs,
		MaxPlayers: r.MaxPlayers,
		Active:     r.Active,
		CreatedAt:  r.CreatedAt,
	}
}

// roomPlayerRow is the room roster join table
type roomPlayerRow struct {
	RoomID   string `gorm:"primaryKey;size:36"`
	PlayerID string `gorm:"primaryKey;size:36"`
	JoinedAt time.Time
}

func (roomPlayerRow) TableName() string { return "room_players" }

type matchRow struct {
	ID             string                   `gorm:"primaryKey;size:36"`
	RoomID         string                   `gorm:"index;size:36;not null"`
	WinningNumbers datatypes.JSONSlice[int] `gorm:"not null"`
	StartedAt      time.Time
	Finished       bool `gorm:"not null;default:false"`
}

func (matchRow) TableName() string { return "matches" }

func newMatchRow(m *model.Match) *matchRow {
	return &matchRow{
		ID:             m.ID,
		RoomID:         m.RoomID,
		WinningNumbers: datatypes.JSONSlice[int](m.WinningNumbers),
		StartedAt:      m.StartedAt,
		Finished:       m.Finished,
	}
}

type betRow struct {
	ID            string                   `gorm:"primaryKey;size:36"`
	MatchID       string                   `gorm:"index;size:36;not null"`
	PlayerID      string                   `gorm:"index;size:36;not null"`
	ChosenNumbers datatypes.JSONSlice[int] `gorm:"not null"`
	Hits          int                      `gorm:"not null;default:0"`
	Points        int                      `gorm:"not null;default:0"`
}

func (betRow) TableName() string { return "bets" }

// newBetRow stores a nil selection as an empty JSON array
func newBetRow(b *model.Bet) *betRow {
	chosen := b.ChosenNumbers
	if chosen == nil {
		chosen = []int{}
	}
	return &betRow{
		ID:            b.ID,
		MatchID:       b.MatchID,
		PlayerID:      b.PlayerID,
		ChosenNumbers: datatypes.JSONSlice[int](chosen),
		Hits:          b.Hits,
		Points:        b.Points,
	}
}
