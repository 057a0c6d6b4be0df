package service

import (
	"context"
	"sync"

	"kenolive/internal/cache"
	"kenolive/internal/logger"
	"kenolive/internal/model"
	"kenolive/internal/repository"
)

const (
	// DefaultRoomTimer is the shared countdown a room starts with, in seconds
	DefaultRoomTimer = 120

	roomGroupPrefix = "sala_"
)

// RoomGroup names the broadcast group of a room
func RoomGroup(roomID string) string {
	return roomGroupPrefix + roomID
}

// roomState is the in-memory part of a room. mu serializes every
// read-modify-write on the room, including the roster broadcast that follows.
type roomState struct {
	mu       sync.Mutex
	id       string
	timer    int
	restored bool
}

// RoomService coordinates room membership and the shared countdown
type RoomService struct {
	roomRepo    repository.RoomRepo
	playerRepo  repository.PlayerRepo
	roomCache   cache.RoomCache
	broadcaster Broadcaster

	mu    sync.RWMutex
	rooms map[string]*roomState
}

// NewRoomService creates a new room service
func NewRoomService(
	roomRepo repository.RoomRepo,
	playerRepo repository.PlayerRepo,
	roomCache cache.RoomCache,
) *RoomService {
	return &RoomService{
		roomRepo:   roomRepo,
		playerRepo: playerRepo,
		roomCache:  roomCache,
		rooms:      make(map[string]*roomState),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *RoomService) state(roomID string) *roomState {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if ok {
		return room
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[roomID]; ok {
		return room
	}
	room = &roomState{id: roomID, timer: DefaultRoomTimer}
	s.rooms[roomID] = room
	return room
}

// Timer returns the current shared countdown of a room
func (s *RoomService) Timer(roomID string) int {
	room := s.state(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.timer
}

// Join subscribes connID to the room group. An authenticated identity is
// attached to the persisted roster; a nil identity only observes.
func (s *RoomService) Join(ctx context.Context, roomID, connID string, identity *model.Identity) {
	s.broadcaster.JoinGroup(RoomGroup(roomID), connID)

	room := s.state(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()

	s.restoreTimer(ctx, room)

	if identity != nil {
		if err := s.attach(ctx, roomID, identity.PlayerID); err != nil {
			logger.Errorf("room %s: failed to attach player %s: %v", roomID, identity.Nickname, err)
		}
	}

	s.broadcastRoster(ctx, room)
}

// Leave detaches the identity from the room and always releases the
// connection's group membership, whatever fails on the way.
func (s *RoomService) Leave(ctx context.Context, roomID, connID string, identity *model.Identity) {
	defer s.broadcaster.LeaveGroup(RoomGroup(roomID), connID)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("room %s: recovered while disconnecting %s: %v", roomID, connID, r)
		}
	}()

	if identity == nil {
		return
	}

	room := s.state(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()

	if err := s.roomRepo.RemovePlayer(ctx, roomID, identity.PlayerID); err != nil {
		logger.Errorf("room %s: failed to remove player %s: %v", roomID, identity.Nickname, err)
		return
	}

	players, err := s.roster(ctx, roomID)
	if err != nil {
		logger.Errorf("room %s: failed to load roster: %v", roomID, err)
		return
	}

	s.broadcaster.BroadcastToGroup(RoomGroup(roomID), &model.SalaUpdate{
		Type:    model.MsgSalaUpdate,
		Players: players,
		Tiempo:  room.timer,
	})

	if len(players) == 0 {
		if err := s.roomRepo.SetActive(ctx, roomID, false); err != nil {
			logger.Errorf("room %s: failed to deactivate: %v", roomID, err)
			return
		}
		logger.Infof("room %s is empty, marked inactive", roomID)
	}
}

// PlayerJoinedNotice re-broadcasts the roster and timer on client request
func (s *RoomService) PlayerJoinedNotice(ctx context.Context, roomID string) {
	room := s.state(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()

	s.broadcastRoster(ctx, room)
}

// UpdateTimer overwrites the shared countdown; last write wins
func (s *RoomService) UpdateTimer(ctx context.Context, roomID string, seconds int) {
	room := s.state(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()

	room.timer = seconds
	room.restored = true

	if s.roomCache != nil {
		if err := s.roomCache.SetTimer(ctx, roomID, seconds); err != nil {
			logger.Warnf("room %s: failed to mirror timer: %v", roomID, err)
		}
	}

	s.broadcaster.BroadcastToGroup(RoomGroup(roomID), &model.TimerSync{
		Type:   model.MsgTimerSync,
		Tiempo: seconds,
	})
}

// restoreTimer loads the mirrored timer once per room. Caller holds room.mu.
func (s *RoomService) restoreTimer(ctx context.Context, room *roomState) {
	if room.restored || s.roomCache == nil {
		return
	}
	room.restored = true

	seconds, ok, err := s.roomCache.GetTimer(ctx, room.id)
	if err != nil {
		logger.Warnf("room %s: failed to read mirrored timer: %v", room.id, err)
		return
	}
	if ok {
		room.timer = seconds
	}
}

func (s *RoomService) attach(ctx context.Context, roomID, playerID string) error {
	stored, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if stored == nil {
		return ErrRoomNotFound
	}

	if err := s.roomRepo.AddPlayer(ctx, roomID, playerID); err != nil {
		return err
	}
	if !stored.Active {
		return s.roomRepo.SetActive(ctx, roomID, true)
	}
	return nil
}

// broadcastRoster sends sala_update to the room. Caller holds room.mu.
func (s *RoomService) broadcastRoster(ctx context.Context, room *roomState) {
	players, err := s.roster(ctx, room.id)
	if err != nil {
		logger.Errorf("room %s: failed to load roster: %v", room.id, err)
		players = []string{}
	}

	s.broadcaster.BroadcastToGroup(RoomGroup(room.id), &model.SalaUpdate{
		Type:    model.MsgSalaUpdate,
		Players: players,
		Tiempo:  room.timer,
	})
}

// roster returns the distinct nicknames of the room's players in join order
func (s *RoomService) roster(ctx context.Context, roomID string) ([]string, error) {
	players := []string{}

	stored, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if stored == nil || len(stored.PlayerIDs) == 0 {
		return players, nil
	}

	found, err := s.playerRepo.GetByIDs(ctx, stored.PlayerIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Player, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	seen := make(map[string]bool, len(found))
	for _, id := range stored.PlayerIDs {
		p, ok := byID[id]
		if !ok || seen[p.Nickname] {
			continue
		}
		seen[p.Nickname] = true
		players = append(players, p.Nickname)
	}
	return players, nil
}
