package model

import "time"

const DefaultMaxPlayers = 10

// Room is the persisted lobby ("sala") players gather in between draws
type Room struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	Code       string    `json:"code" bson:"code"`
	CreatorID  string    `json:"creatorId" bson:"creatorId"`
	PlayerIDs  []string  `json:"playerIds" bson:"playerIds"`
	MaxPlayers int       `json:"maxPlayers" bson:"maxPlayers"`
	Active     bool      `json:"active" bson:"active"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// LobbyView is returned when a player enters the lobby over HTTP
type LobbyView struct {
	RoomID    string   `json:"roomId"`
	Code      string   `json:"code"`
	Players   []string `json:"players"`
	InviteURL string   `json:"inviteUrl"`
}
