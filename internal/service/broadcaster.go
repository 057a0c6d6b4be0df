package service

// Broadcaster interface for WebSocket group fan-out (avoids import cycle).
// Sends are fire-and-forget: implementations must not block on delivery.
type Broadcaster interface {
	JoinGroup(group, connID string)
	LeaveGroup(group, connID string)
	BroadcastToGroup(group string, msg interface{})
	SendToConnection(connID string, msg interface{})
}
