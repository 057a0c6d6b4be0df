package model

// MessageType is the "type" discriminator of every websocket message
type MessageType string

// Room group messages
const (
	MsgPlayerJoined MessageType = "player_joined"
	MsgTimerUpdate  MessageType = "timer_update"
	MsgSalaUpdate   MessageType = "sala_update"
	MsgTimerSync    MessageType = "timer_sync"
)

// Game group messages
const (
	MsgNumbersSelected    MessageType = "numeros_seleccionados"
	MsgStartDraw          MessageType = "iniciar_sorteo"
	MsgConnected          MessageType = "connected"
	MsgSelectionConfirmed MessageType = "seleccion_confirmada"
	MsgConfirmationStatus MessageType = "estado_confirmaciones"
	MsgDrawCompleted      MessageType = "sorteo_completado"
	MsgError              MessageType = "error"
)

// SalaUpdate carries the room roster and shared timer
type SalaUpdate struct {
	Type    MessageType `json:"type"`
	Players []string    `json:"players"`
	Tiempo  int         `json:"tiempo"`
}

// TimerSync carries an overwritten shared timer
type TimerSync struct {
	Type   MessageType `json:"type"`
	Tiempo int         `json:"tiempo"`
}

// Notice is a private text message (connected, seleccion_confirmada, error)
type Notice struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// ConfirmationStatus reports how many pending players have confirmed
type ConfirmationStatus struct {
	Type      MessageType `json:"type"`
	Confirmed int         `json:"confirmados"`
	Total     int         `json:"total"`
	AllReady  bool        `json:"todos_listos"`
}

// PlayerResult is one participant's outcome in a draw
type PlayerResult struct {
	Nickname string `json:"nickname"`
	Hits     int    `json:"aciertos"`
	Points   int    `json:"puntos"`
	Numbers  []int  `json:"numeros"`
}

// DrawCompleted announces the winning numbers and ranked results
type DrawCompleted struct {
	Type           MessageType    `json:"type"`
	WinningNumbers []int          `json:"numeros_ganadores"`
	Results        []PlayerResult `json:"resultados"`
}
