package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"kenolive/internal/cache"
	"kenolive/internal/keno"
	"kenolive/internal/logger"
	"kenolive/internal/model"
	"kenolive/internal/repository"
)

// GameGroup is the single well-known group every game connection joins
const GameGroup = "game_room"

// Drawer produces the winning numbers of a draw
type Drawer interface {
	Draw() []int
}

type pendingPlayer struct {
	nickname string
	numbers  []int
}

// gameState holds the selections of one game group. order keeps connection
// ids in first-submission order so results sort stably.
type gameState struct {
	mu        sync.Mutex
	pending   map[string]*pendingPlayer
	order     []string
	confirmed map[string]struct{}
}

func newGameState() *gameState {
	return &gameState{
		pending:   make(map[string]*pendingPlayer),
		confirmed: make(map[string]struct{}),
	}
}

// counts returns confirmed, total and whether the group is ready to draw.
// Caller holds g.mu.
func (g *gameState) counts() (int, int, bool) {
	confirmed := len(g.confirmed)
	total := len(g.pending)
	return confirmed, total, confirmed == total && total > 0
}

func (g *gameState) nicknameInUse(nickname string) bool {
	for _, p := range g.pending {
		if p.nickname == nickname {
			return true
		}
	}
	return false
}

func (g *gameState) remove(connID string) {
	p, ok := g.pending[connID]
	if !ok {
		return
	}
	delete(g.pending, connID)
	delete(g.confirmed, p.nickname)
	for i, id := range g.order {
		if id == connID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// GameService runs the confirm -> draw workflow of each game group
type GameService struct {
	roomRepo    repository.RoomRepo
	playerRepo  repository.PlayerRepo
	matchRepo   repository.MatchRepo
	betRepo     repository.BetRepo
	leaderboard cache.LeaderboardCache
	drawer      Drawer
	broadcaster Broadcaster

	mu     sync.RWMutex
	groups map[string]*gameState
}

// NewGameService creates a new game service
func NewGameService(
	repos *repository.Repositories,
	leaderboard cache.LeaderboardCache,
	drawer Drawer,
) *GameService {
	return &GameService{
		roomRepo:    repos.Rooms,
		playerRepo:  repos.Players,
		matchRepo:   repos.Matches,
		betRepo:     repos.Bets,
		leaderboard: leaderboard,
		drawer:      drawer,
		groups:      make(map[string]*gameState),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *GameService) game(group string) *gameState {
	s.mu.RLock()
	g, ok := s.groups[group]
	s.mu.RUnlock()
	if ok {
		return g
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.groups[group]; ok {
		return g
	}
	g = newGameState()
	s.groups[group] = g
	return g
}

// Status reports confirmed, total and readiness of a group
func (s *GameService) Status(group string) (int, int, bool) {
	g := s.game(group)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts()
}

// Join subscribes connID to the group and acknowledges it privately
func (s *GameService) Join(group, connID string) {
	s.broadcaster.JoinGroup(group, connID)
	s.broadcaster.SendToConnection(connID, &model.Notice{
		Type:    model.MsgConnected,
		Message: "Conexion establecida",
	})
}

// SubmitSelection records the numbers chosen by connID and confirms its
// nickname. An empty nickname falls back to the connection's identity.
func (s *GameService) SubmitSelection(group, connID string, identity *model.Identity, nickname string, numbers []int) {
	if nickname == "" && identity != nil {
		nickname = identity.Nickname
	}
	if nickname == "" {
		s.sendError(connID, "Se requiere un nickname para confirmar")
		return
	}
	if numbers == nil {
		numbers = []int{}
	}

	g := s.game(group)
	g.mu.Lock()
	defer g.mu.Unlock()

	if prev, ok := g.pending[connID]; ok {
		if prev.nickname != nickname {
			prevNickname := prev.nickname
			delete(g.pending, connID)
			if !g.nicknameInUse(prevNickname) {
				delete(g.confirmed, prevNickname)
			}
		}
	} else {
		g.order = append(g.order, connID)
	}
	g.pending[connID] = &pendingPlayer{nickname: nickname, numbers: numbers}
	g.confirmed[nickname] = struct{}{}

	confirmed, total, allReady := g.counts()
	logger.Debugf("game %s: %s selected %d numbers (%d/%d confirmed)", group, nickname, len(numbers), confirmed, total)

	s.broadcaster.BroadcastToGroup(group, &model.ConfirmationStatus{
		Type:      model.MsgConfirmationStatus,
		Confirmed: confirmed,
		Total:     total,
		AllReady:  allReady,
	})
	s.broadcaster.SendToConnection(connID, &model.Notice{
		Type:    model.MsgSelectionConfirmed,
		Message: fmt.Sprintf("Has seleccionado %d numeros", len(numbers)),
	})
}

// StartDraw draws the winning numbers once every pending player confirmed,
// scores each selection, persists the match and announces the results.
func (s *GameService) StartDraw(ctx context.Context, group, connID string) {
	g := s.game(group)
	g.mu.Lock()
	defer g.mu.Unlock()

	confirmed, total, _ := g.counts()
	if confirmed < total {
		s.sendError(connID, fmt.Sprintf("Faltan %d jugador(es) por confirmar", total-confirmed))
		return
	}

	winning := s.drawer.Draw()

	results := make([]model.PlayerResult, 0, total)
	for _, id := range g.order {
		p := g.pending[id]
		hits := keno.Hits(p.numbers, winning)
		results = append(results, model.PlayerResult{
			Nickname: p.nickname,
			Hits:     hits,
			Points:   keno.Points(len(p.numbers), hits),
			Numbers:  p.numbers,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Points > results[j].Points
	})

	s.saveMatch(ctx, winning, results)

	g.confirmed = make(map[string]struct{})

	logger.Infof("game %s: draw completed with %d players", group, len(results))
	s.broadcaster.BroadcastToGroup(group, &model.DrawCompleted{
		Type:           model.MsgDrawCompleted,
		WinningNumbers: winning,
		Results:        results,
	})
}

// Leave drops connID's selection and group membership
func (s *GameService) Leave(group, connID string) {
	defer s.broadcaster.LeaveGroup(group, connID)

	g := s.game(group)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.remove(connID)
}

func (s *GameService) sendError(connID, message string) {
	s.broadcaster.SendToConnection(connID, &model.Notice{
		Type:    model.MsgError,
		Message: message,
	})
}

// saveMatch persists the draw against the active room. Failures are logged:
// a missing room skips persistence, a missing player skips only that bet.
func (s *GameService) saveMatch(ctx context.Context, winning []int, results []model.PlayerResult) {
	room, err := s.roomRepo.GetActive(ctx)
	if err != nil {
		logger.Errorf("failed to load active room: %v", err)
		return
	}
	if room == nil {
		logger.Warnf("no active room, draw not persisted")
		return
	}

	match := &model.Match{
		RoomID:         room.ID,
		WinningNumbers: winning,
		Finished:       true,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		logger.Errorf("room %s: failed to save match: %v", room.ID, err)
		return
	}

	for _, r := range results {
		if err := s.saveBet(ctx, match.ID, r); err != nil {
			logger.Warnf("match %s: bet of %s not saved: %v", match.ID, r.Nickname, err)
		}
	}
}

func (s *GameService) saveBet(ctx context.Context, matchID string, r model.PlayerResult) error {
	player, err := s.playerRepo.GetByNickname(ctx, r.Nickname)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrPlayerNotFound
	}

	bet := &model.Bet{
		MatchID:       matchID,
		PlayerID:      player.ID,
		ChosenNumbers: r.Numbers,
		Hits:          r.Hits,
		Points:        r.Points,
	}
	if err := s.betRepo.Create(ctx, bet); err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}
	if err := s.playerRepo.IncrementTotals(ctx, player.ID, r.Points); err != nil {
		return fmt.Errorf("failed to update totals: %w", err)
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.AddResult(ctx, player.Nickname, r.Points); err != nil {
			logger.Warnf("leaderboard update for %s failed: %v", player.Nickname, err)
		}
	}
	return nil
}
