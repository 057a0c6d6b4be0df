package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"kenolive/internal/cache"
	"kenolive/internal/model"
	"kenolive/internal/repository"
)

// sent is one message recorded by recordingBroadcaster
type sent struct {
	group  string // empty for private sends
	connID string
	msg    interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	groups map[string]map[string]bool
	sent   []sent
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{groups: make(map[string]map[string]bool)}
}

func (b *recordingBroadcaster) JoinGroup(group, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.groups[group] == nil {
		b.groups[group] = make(map[string]bool)
	}
	b.groups[group][connID] = true
}

func (b *recordingBroadcaster) LeaveGroup(group, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.groups[group], connID)
}

func (b *recordingBroadcaster) BroadcastToGroup(group string, msg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sent{group: group, msg: msg})
}

func (b *recordingBroadcaster) SendToConnection(connID string, msg interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sent{connID: connID, msg: msg})
}

func (b *recordingBroadcaster) member(group, connID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.groups[group][connID]
}

func (b *recordingBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = nil
}

func (b *recordingBroadcaster) all() []sent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sent(nil), b.sent...)
}

// last returns the most recent message, or fails the lookup with ok=false
func (b *recordingBroadcaster) last() (sent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sent) == 0 {
		return sent{}, false
	}
	return b.sent[len(b.sent)-1], true
}

// memRooms is an in-memory repository.RoomRepo
type memRooms struct {
	mu     sync.Mutex
	byID   map[string]*model.Room
	nextID int
	failOn string
}

func newMemRooms() *memRooms {
	return &memRooms{byID: make(map[string]*model.Room)}
}

func (r *memRooms) Create(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	room.ID = fmt.Sprintf("room-%d", r.nextID)
	cp := *room
	cp.PlayerIDs = append([]string{}, room.PlayerIDs...)
	r.byID[room.ID] = &cp
	return nil
}

func (r *memRooms) put(room *model.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *room
	cp.PlayerIDs = append([]string{}, room.PlayerIDs...)
	r.byID[room.ID] = &cp
}

func (r *memRooms) GetByID(_ context.Context, id string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "GetByID" {
		return nil, errors.New("store unavailable")
	}
	room, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *room
	cp.PlayerIDs = append([]string{}, room.PlayerIDs...)
	return &cp, nil
}

func (r *memRooms) GetByCode(_ context.Context, code string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.byID {
		if room.Code == code {
			cp := *room
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRooms) GetActive(_ context.Context) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if room := r.byID[id]; room.Active {
			cp := *room
			cp.PlayerIDs = append([]string{}, room.PlayerIDs...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRooms) AddPlayer(_ context.Context, roomID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.byID[roomID]
	if !ok {
		return errors.New("room not found")
	}
	for _, id := range room.PlayerIDs {
		if id == playerID {
			return nil
		}
	}
	room.PlayerIDs = append(room.PlayerIDs, playerID)
	return nil
}

func (r *memRooms) RemovePlayer(_ context.Context, roomID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.byID[roomID]
	if !ok {
		return nil
	}
	kept := room.PlayerIDs[:0]
	for _, id := range room.PlayerIDs {
		if id != playerID {
			kept = append(kept, id)
		}
	}
	room.PlayerIDs = kept
	return nil
}

func (r *memRooms) SetActive(_ context.Context, roomID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.byID[roomID]; ok {
		room.Active = active
	}
	return nil
}

// memPlayers is an in-memory repository.PlayerRepo
type memPlayers struct {
	mu      sync.Mutex
	byID    map[string]*model.Player
	ordered []string
}

func newMemPlayers(players ...*model.Player) *memPlayers {
	m := &memPlayers{byID: make(map[string]*model.Player)}
	for _, p := range players {
		cp := *p
		m.byID[p.ID] = &cp
		m.ordered = append(m.ordered, p.ID)
	}
	return m
}

func (m *memPlayers) Create(_ context.Context, player *model.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.Username == player.Username || p.Email == player.Email {
			return repository.ErrDuplicate
		}
	}
	if player.ID == "" {
		player.ID = fmt.Sprintf("player-%d", len(m.byID)+1)
	}
	cp := *player
	m.byID[player.ID] = &cp
	m.ordered = append(m.ordered, player.ID)
	return nil
}

func (m *memPlayers) GetByID(_ context.Context, id string) (*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memPlayers) GetByIDs(_ context.Context, ids []string) ([]*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Player
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPlayers) find(match func(*model.Player) bool) *model.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.ordered {
		if p := m.byID[id]; match(p) {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (m *memPlayers) GetByNickname(_ context.Context, nickname string) (*model.Player, error) {
	return m.find(func(p *model.Player) bool { return p.Nickname == nickname }), nil
}

func (m *memPlayers) GetByUsername(_ context.Context, username string) (*model.Player, error) {
	return m.find(func(p *model.Player) bool { return p.Username == username }), nil
}

func (m *memPlayers) GetByEmail(_ context.Context, email string) (*model.Player, error) {
	return m.find(func(p *model.Player) bool { return p.Email == email }), nil
}

func (m *memPlayers) IncrementTotals(_ context.Context, id string, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return errors.New("player not found")
	}
	p.TotalPoints += points
	p.MatchesPlayed++
	return nil
}

func (m *memPlayers) ListTop(_ context.Context, limit int) ([]*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Player, 0, len(m.ordered))
	for _, id := range m.ordered {
		cp := *m.byID[id]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPoints > out[j].TotalPoints })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memMatches struct {
	mu      sync.Mutex
	created []*model.Match
}

func (m *memMatches) Create(_ context.Context, match *model.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	match.ID = fmt.Sprintf("match-%d", len(m.created)+1)
	m.created = append(m.created, match)
	return nil
}

type memBets struct {
	mu      sync.Mutex
	created []*model.Bet
}

func (m *memBets) Create(_ context.Context, bet *model.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, bet)
	return nil
}

// fakeRoomCache is an in-memory cache.RoomCache
type fakeRoomCache struct {
	mu     sync.Mutex
	timers map[string]int
}

func newFakeRoomCache() *fakeRoomCache {
	return &fakeRoomCache{timers: make(map[string]int)}
}

func (c *fakeRoomCache) SetTimer(_ context.Context, roomID string, seconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers[roomID] = seconds
	return nil
}

func (c *fakeRoomCache) GetTimer(_ context.Context, roomID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.timers[roomID]
	return s, ok, nil
}

// fakeLeaderboard is an in-memory cache.LeaderboardCache
type fakeLeaderboard struct {
	mu      sync.Mutex
	entries []cache.LeaderboardEntry
	err     error
}

func (l *fakeLeaderboard) AddResult(_ context.Context, nickname string, points int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].Nickname == nickname {
			l.entries[i].Score += points
			l.entries[i].MatchesPlayed++
			return nil
		}
	}
	l.entries = append(l.entries, cache.LeaderboardEntry{Nickname: nickname, Score: points, MatchesPlayed: 1})
	return nil
}

func (l *fakeLeaderboard) GetTop(_ context.Context, limit int) ([]cache.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	out := append([]cache.LeaderboardEntry(nil), l.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// fixedDrawer always returns the same winning numbers
type fixedDrawer []int

func (d fixedDrawer) Draw() []int {
	return append([]int(nil), d...)
}

// asJSON flattens a message into a generic map for field assertions
func asJSON(msg interface{}) map[string]interface{} {
	data, _ := json.Marshal(msg)
	var out map[string]interface{}
	json.Unmarshal(data, &out)
	return out
}
