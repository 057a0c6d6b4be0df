package model

import "time"

// Player is a registered account with its cumulative keno stats
type Player struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	PasswordHash  string    `json:"-" bson:"passwordHash"`
	Nickname      string    `json:"nickname" bson:"nickname"`
	TotalPoints   int       `json:"totalPoints" bson:"totalPoints"`
	MatchesPlayed int       `json:"matchesPlayed" bson:"matchesPlayed"`
	RegisteredAt  time.Time `json:"registeredAt" bson:"registeredAt"`
}

// RankingEntry is one row of the global ranking
type RankingEntry struct {
	Rank          int    `json:"rank"`
	Nickname      string `json:"nickname"`
	TotalPoints   int    `json:"totalPoints"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Average       string `json:"average"`
}
