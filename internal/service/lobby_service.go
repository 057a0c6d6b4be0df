package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/url"
	"sync"

	"github.com/skip2/go-qrcode"

	"kenolive/internal/logger"
	"kenolive/internal/model"
	"kenolive/internal/repository"
)

// LobbyService sends players over HTTP into the one active room
type LobbyService struct {
	roomRepo   repository.RoomRepo
	playerRepo repository.PlayerRepo
	rooms      *RoomService
	baseURL    string

	// createMu serializes the active-room lookup with its creation
	createMu sync.Mutex
}

// NewLobbyService creates a new lobby service
func NewLobbyService(roomRepo repository.RoomRepo, playerRepo repository.PlayerRepo, rooms *RoomService, baseURL string) *LobbyService {
	return &LobbyService{
		roomRepo:   roomRepo,
		playerRepo: playerRepo,
		rooms:      rooms,
		baseURL:    baseURL,
	}
}

// Enter finds the active room, creating one when none exists, and adds
// the player to it if absent
func (s *LobbyService) Enter(ctx context.Context, playerID string) (*model.LobbyView, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	room, err := s.activeRoom(ctx, player)
	if err != nil {
		return nil, err
	}

	if !contains(room.PlayerIDs, player.ID) {
		if err := s.roomRepo.AddPlayer(ctx, room.ID, player.ID); err != nil {
			return nil, fmt.Errorf("failed to add player: %w", err)
		}
	}

	players, err := s.rooms.roster(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	return &model.LobbyView{
		RoomID:    room.ID,
		Code:      room.Code,
		Players:   players,
		InviteURL: s.inviteURL(room.Code),
	}, nil
}

// InviteQR renders the invitation URL of a room as a PNG QR code
func (s *LobbyService) InviteQR(ctx context.Context, roomID string, size int) ([]byte, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return qrcode.Encode(s.inviteURL(room.Code), qrcode.Medium, size)
}

func (s *LobbyService) inviteURL(code string) string {
	return s.baseURL + "/sala?sala=" + url.QueryEscape(code)
}

// activeRoom returns the oldest active room, creating one for player when
// none exists. Concurrent first entries share a single room.
func (s *LobbyService) activeRoom(ctx context.Context, player *model.Player) (*model.Room, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	room, err := s.roomRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active room: %w", err)
	}
	if room != nil {
		return room, nil
	}

	if room, err = s.createRoom(ctx, player); err != nil {
		return nil, err
	}
	logger.Infof("room %s (%s) created by %s", room.ID, room.Code, player.Nickname)
	return room, nil
}

func (s *LobbyService) createRoom(ctx context.Context, creator *model.Player) (*model.Room, error) {
	code, err := s.generateRoomCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	room := &model.Room{
		Code:       code,
		CreatorID:  creator.ID,
		PlayerIDs:  []string{},
		MaxPlayers: model.DefaultMaxPlayers,
		Active:     true,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

// generateRoomCode creates a 6-char alphanumeric code
func (s *LobbyService) generateRoomCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		// Check uniqueness
		existing, err := s.roomRepo.GetByCode(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique room code")
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
