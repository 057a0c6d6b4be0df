package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"kenolive/internal/model"
)

// defaultTimerUpdate is applied when timer_update carries no tiempo
const defaultTimerUpdate = 20

// ErrIgnored marks inbound frames that are malformed or of an unknown type
var ErrIgnored = errors.New("ignored message")

// Inbound is a decoded client message
type Inbound interface {
	MessageType() model.MessageType
}

// PlayerJoined asks for a roster and timer re-broadcast
type PlayerJoined struct{}

// TimerUpdate overwrites the room's shared countdown
type TimerUpdate struct {
	Seconds int
}

// NumbersSelected submits a player's keno ticket
type NumbersSelected struct {
	Nickname string
	Numbers  []int
}

// StartDraw asks for the draw to run
type StartDraw struct{}

func (PlayerJoined) MessageType() model.MessageType    { return model.MsgPlayerJoined }
func (TimerUpdate) MessageType() model.MessageType     { return model.MsgTimerUpdate }
func (NumbersSelected) MessageType() model.MessageType { return model.MsgNumbersSelected }
func (StartDraw) MessageType() model.MessageType       { return model.MsgStartDraw }

// Decode validates a raw frame into its typed message. Anything that does not
// fit a known shape returns an error wrapping ErrIgnored.
func Decode(data []byte) (Inbound, error) {
	var envelope struct {
		Type model.MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIgnored, err)
	}

	switch envelope.Type {
	case model.MsgPlayerJoined:
		return PlayerJoined{}, nil

	case model.MsgTimerUpdate:
		var body struct {
			Tiempo *int `json:"tiempo"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("%w: timer_update: %v", ErrIgnored, err)
		}
		seconds := defaultTimerUpdate
		if body.Tiempo != nil {
			seconds = *body.Tiempo
		}
		return TimerUpdate{Seconds: seconds}, nil

	case model.MsgNumbersSelected:
		var body struct {
			Nickname string `json:"nickname"`
			Numeros  []int  `json:"numeros"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("%w: numeros_seleccionados: %v", ErrIgnored, err)
		}
		if body.Numeros == nil {
			body.Numeros = []int{}
		}
		return NumbersSelected{Nickname: body.Nickname, Numbers: body.Numeros}, nil

	case model.MsgStartDraw:
		return StartDraw{}, nil

	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrIgnored, envelope.Type)
	}
}
