package model

import "time"

// Match is one completed draw ("partida")
type Match struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	RoomID         string    `json:"roomId" bson:"roomId"`
	WinningNumbers []int     `json:"winningNumbers" bson:"winningNumbers"`
	StartedAt      time.Time `json:"startedAt" bson:"startedAt"`
	Finished       bool      `json:"finished" bson:"finished"`
}

// Bet is one player's selection and outcome for a match ("apuesta")
type Bet struct {
	ID            string `json:"id" bson:"_id,omitempty"`
	MatchID       string `json:"matchId" bson:"matchId"`
	PlayerID      string `json:"playerId" bson:"playerId"`
	ChosenNumbers []int  `json:"chosenNumbers" bson:"chosenNumbers"`
	Hits          int    `json:"hits" bson:"hits"`
	Points        int    `json:"points" bson:"points"`
}
