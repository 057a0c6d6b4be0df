package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"kenolive/internal/app"
	"kenolive/internal/config"
	"kenolive/internal/logger"
	"kenolive/internal/model"
	"kenolive/internal/service"
)

// demoPlayers are created when no usernames are passed on the command line
var demoPlayers = []string{"ana", "beto", "carla", "dani"}

func main() {
	password := flag.String("password", "keno1234", "password for every seeded account")
	enter := flag.Bool("enter", true, "place the seeded players in the active room")
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(cfg.LogLevel); err != nil {
		logger.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := app.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer store.Close()

	authSvc := service.NewAuthService(store.Repos.Players, cfg.JWTSecret, cfg.TokenTTL)
	roomSvc := service.NewRoomService(store.Repos.Rooms, store.Repos.Players, nil)
	lobbySvc := service.NewLobbyService(store.Repos.Rooms, store.Repos.Players, roomSvc, cfg.PublicBaseURL)

	usernames := flag.Args()
	if len(usernames) == 0 {
		usernames = demoPlayers
	}

	var view *model.LobbyView
	for _, username := range usernames {
		player, err := seedPlayer(ctx, authSvc, username, *password)
		if err != nil {
			logger.Fatalf("Failed to seed %s: %v", username, err)
		}

		if *enter {
			if view, err = lobbySvc.Enter(ctx, player.PlayerID); err != nil {
				logger.Fatalf("Failed to enter room as %s: %v", username, err)
			}
		}
		fmt.Printf("%-10s id=%s\n           token=%s\n", player.Nickname, player.PlayerID, player.Token)
	}

	if view != nil {
		fmt.Printf("\nRoom %s (code %s): %v\nInvite: %s\n", view.RoomID, view.Code, view.Players, view.InviteURL)
	}
}

// seedPlayer registers username, or logs in when the account already exists
func seedPlayer(ctx context.Context, authSvc *service.AuthService, username, password string) (*model.AuthResponse, error) {
	email := username + "@keno.local"

	resp, err := authSvc.Register(ctx, &model.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) {
		logger.Infof("%s already registered, logging in", username)
		return authSvc.Login(ctx, &model.LoginRequest{Email: email, Password: password})
	}
	return resp, err
}
