package service

import (
	"context"
	"reflect"
	"testing"

	"kenolive/internal/model"
	"kenolive/internal/repository"
)

type gameFixture struct {
	svc         *GameService
	b           *recordingBroadcaster
	rooms       *memRooms
	players     *memPlayers
	matches     *memMatches
	bets        *memBets
	leaderboard *fakeLeaderboard
}

// winning numbers used by every game test: 1..20
var testWinning = fixedDrawer{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}

func newGameFixture(t *testing.T, players ...*model.Player) *gameFixture {
	t.Helper()
	f := &gameFixture{
		b:           newRecordingBroadcaster(),
		rooms:       newMemRooms(),
		players:     newMemPlayers(players...),
		matches:     &memMatches{},
		bets:        &memBets{},
		leaderboard: &fakeLeaderboard{},
	}
	f.svc = NewGameService(&repository.Repositories{
		Rooms:   f.rooms,
		Players: f.players,
		Matches: f.matches,
		Bets:    f.bets,
	}, f.leaderboard, testWinning)
	f.svc.SetBroadcaster(f.b)
	return f
}

func (f *gameFixture) lastStatus(t *testing.T) *model.ConfirmationStatus {
	t.Helper()
	msgs := f.b.all()
	for i := len(msgs) - 1; i >= 0; i-- {
		if status, ok := msgs[i].msg.(*model.ConfirmationStatus); ok {
			return status
		}
	}
	t.Fatal("no estado_confirmaciones broadcast")
	return nil
}

func (f *gameFixture) lastDraw(t *testing.T) *model.DrawCompleted {
	t.Helper()
	msg, ok := f.b.last()
	if !ok {
		t.Fatal("nothing was broadcast")
	}
	draw, ok := msg.msg.(*model.DrawCompleted)
	if !ok {
		t.Fatalf("last message = %T, want *model.DrawCompleted", msg.msg)
	}
	if msg.group != GameGroup {
		t.Fatalf("draw sent to %q, want %q", msg.group, GameGroup)
	}
	return draw
}

func TestGameJoinSendsPrivateGreeting(t *testing.T) {
	f := newGameFixture(t)

	f.svc.Join(GameGroup, "c1")

	if !f.b.member(GameGroup, "c1") {
		t.Fatal("connection not subscribed to game group")
	}
	msg, _ := f.b.last()
	if msg.connID != "c1" {
		t.Fatalf("greeting sent to %q, want c1", msg.connID)
	}
	if got := asJSON(msg.msg); got["type"] != "connected" || got["message"] != "Conexion establecida" {
		t.Fatalf("greeting = %v", got)
	}
}

func TestGameSelectionConfirmsPrivately(t *testing.T) {
	f := newGameFixture(t)

	f.svc.SubmitSelection(GameGroup, "c1", nil, "ana", []int{4, 8, 15, 16})

	msgs := f.b.all()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want status broadcast and private ack", len(msgs))
	}
	status := asJSON(msgs[0].msg)
	if msgs[0].group != GameGroup || status["type"] != "estado_confirmaciones" {
		t.Fatalf("first message = %+v", msgs[0])
	}
	if status["confirmados"] != float64(1) || status["total"] != float64(1) || status["todos_listos"] != true {
		t.Fatalf("status = %v", status)
	}

	ack := asJSON(msgs[1].msg)
	if msgs[1].connID != "c1" || ack["type"] != "seleccion_confirmada" || ack["message"] != "Has seleccionado 4 numeros" {
		t.Fatalf("ack = %+v %v", msgs[1], ack)
	}
}

func TestGameTwoPlayerConfirmFlow(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	f.svc.SubmitSelection(GameGroup, "c1", nil, "ana", []int{1})
	f.svc.SubmitSelection(GameGroup, "c2", nil, "beto", []int{2})
	f.svc.StartDraw(ctx, GameGroup, "c1")

	// selections stay pending after a draw, confirmations do not
	if confirmed, total, ready := f.svc.Status(GameGroup); confirmed != 0 || total != 2 || ready {
		t.Fatalf("after draw status = %d/%d ready=%t, want 0/2 false", confirmed, total, ready)
	}

	f.svc.SubmitSelection(GameGroup, "c1", nil, "ana", []int{1, 2})
	if s := f.lastStatus(t); s.Confirmed != 1 || s.Total != 2 || s.AllReady {
		t.Fatalf("status = %+v, want 1/2 not ready", s)
	}

	f.svc.SubmitSelection(GameGroup, "c2", nil, "beto", []int{3})
	if s := f.lastStatus(t); s.Confirmed != 2 || s.Total != 2 || !s.AllReady {
		t.Fatalf("status = %+v, want 2/2 ready", s)
	}
}

func TestGameDrawGuardsUnconfirmedPlayers(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	f.svc.SubmitSelection(GameGroup, "c1", nil, "ana", []int{1})
	f.svc.SubmitSelection(GameGroup, "c2", nil, "beto", []int{2})
	f.svc.SubmitSelection(GameGroup, "c3", nil, "carla", []int{3})
	f.svc.StartDraw(ctx, GameGroup, "c1")
	f.svc.SubmitSelection(GameGroup, "c1", nil, "ana", []int{1})

	f.b.reset()
	f.svc.StartDraw(ctx, GameGroup, "c1")

	msgs := f.b.all()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want a single private error", len(msgs))
	}
	if msgs[0].connID != "c1" || msgs[0].group != "" {
		t.Fatalf("error delivered to %+v, want private to c1", msgs[0])
	}
	got := asJSON(msgs[0].msg)
	if got["type"] != "error" || got["message"] != "Faltan 2 jugador(es) por confirmar" {
		t.Fatalf("error = %v", got)
	}
	if confirmed, total, _ := f.svc.Status(GameGroup); confirmed != 1 || total != 3 {
		t.Fatalf("status = %d/%d, want 1/3 after refused draw", confirmed, total)
	}
}

func TestGameDrawResults(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	f.svc.SubmitSelection(GameGroup, "c1", nil, "beto", []int{21, 22})
	f.svc.SubmitSelection(GameGroup, "c2", nil, "carla", []int{1, 2, 30})
	f.svc.SubmitSelection(GameGroup, "c3", nil, "dani", []int{40})
	f.svc.SubmitSelection(GameGroup, "c4", nil, "ana", []int{1, 2, 3})
	f.svc.StartDraw(ctx, GameGroup, "c2")

	draw := f.lastDraw(t)
	if !reflect.DeepEqual(draw.WinningNumbers, []int(testWinning)) {
		t.Fatalf("winning = %v", draw.WinningNumbers)
	}

	want := []model.PlayerResult{
		{Nickname: "ana", Hits: 3, Points: 45, Numbers: []int{1, 2, 3}},
		{Nickname: "carla", Hits: 2, Points: 5, Numbers: []int{1, 2, 30}},
		{Nickname: "beto", Hits: 0, Points: 0, Numbers: []int{21, 22}},
		{Nickname: "dani", Hits: 0, Points: 0, Numbers: []int{40}},
	}
	if !reflect.DeepEqual(draw.Results, want) {
		t.Fatalf("results = %+v\nwant %+v", draw.Results, want)
	}

	got := asJSON(draw)
	if got["type"] != "sorteo_completado" {
		t.Fatalf("type = %v", got["type"])
	}
	first := got["resultados"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"nickname", "aciertos", "puntos", "numeros"} {
		if _, ok := first[key]; !ok {
			t.Fatalf("result missing %q: %v", key, first)
		}
	}
}

func TestGameDrawPersistsAgainstActiveRoom(t *testing.T) {
	f := newGameFixture(t, ana, beto)
	f.rooms.put(&model.Room{ID: "r1", Active: true})
	ctx := context.Background()

	f.svc.SubmitSelection(GameGroup, "c1", nil, "ana", []int{1, 2, 3})
	f.svc.SubmitSelection(GameGroup, "c2", nil, "ghost", []int{1})
	f.svc.SubmitSelection(GameGroup, "c3", nil, "beto", []int{50})
	f.svc.StartDraw(ctx, GameGroup, "c1")

	if len(f.matches.created) != 1 {
		t.Fatalf("matches = %d, want 1", len(f.matches.created))
	}
	match := f.matches.created[0]
	if match.RoomID != "r1" || !match.Finished {
		t.Fatalf("match = %+v", match)
	}

	// the unknown nickname is skipped, the others are saved
	if len(f.bets.created) != 2 {
		t.Fatalf("bets = %d, want 2", len(f.bets.created))
	}
	for _, bet := range f.bets.created {
		if bet.MatchID != match.ID {
			t.Fatalf("bet %+v not linked to match %s", bet, match.ID)
		}
	}

	stored, _ := f.players.GetByID(ctx, ana.ID)
	if stored.TotalPoints != 45 || stored.MatchesPlayed != 1 {
		t.Fatalf("ana totals = %d/%d, want 45/1", stored.TotalPoints, stored.MatchesPlayed)
	}
	top, _ := f.leaderboard.GetTop(ctx, 10)
	if len(top) != 2 || top[0].Nickname != "ana" || top[0].Score != 45 {
		t.Fatalf("leaderboard = %+v", top)
	}

	// broadcast happens even though one bet was not saved
	if got := len(f.lastDraw(t).Results); got != 3 {
		t.Fatalf("results = %d, want 3", got)
	}
}

func TestGameDrawWithoutActiveRoomStillBroadcasts(t *testing.T) {
	f := newGameFixture(t, ana)
	ctx := context.Background()

	f.svc.SubmitSelection(GameGroup, "c1", nil, "ana", []int{1})
	f.svc.StartDraw(ctx, GameGroup, "c1")

	if len(f.matches.created) != 0 || len(f.bets.created) != 0 {
		t.Fatalf("persisted %d matches and %d bets without an active room", len(f.matches.created), len(f.bets.created))
	}
	if got := f.lastDraw(t).Results[0].Points; got != 3 {
		t.Fatalf("points = %d, want 3", got)
	}
}

func TestGameLeaveDropsSelection(t *testing.T) {
	f := newGameFixture(t)

	f.svc.Join(GameGroup, "c1")
	f.svc.SubmitSelection(GameGroup, "c1", nil, "ana", []int{1})
	f.svc.SubmitSelection(GameGroup, "c2", nil, "beto", []int{2})
	f.svc.Leave(GameGroup, "c1")

	if f.b.member(GameGroup, "c1") {
		t.Fatal("connection still subscribed after leave")
	}
	if confirmed, total, ready := f.svc.Status(GameGroup); confirmed != 1 || total != 1 || !ready {
		t.Fatalf("status = %d/%d ready=%t, want 1/1 true", confirmed, total, ready)
	}

	// leaving twice is harmless
	f.svc.Leave(GameGroup, "c1")
}

func TestGameNicknameChangeKeepsConfirmedSubset(t *testing.T) {
	f := newGameFixture(t)

	f.svc.SubmitSelection(GameGroup, "c1", nil, "ana", []int{1})
	f.svc.SubmitSelection(GameGroup, "c1", nil, "anita", []int{1, 2})

	if confirmed, total, _ := f.svc.Status(GameGroup); confirmed != 1 || total != 1 {
		t.Fatalf("status = %d/%d, want 1/1", confirmed, total)
	}

	g := f.svc.game(GameGroup)
	g.mu.Lock()
	defer g.mu.Unlock()
	for nickname := range g.confirmed {
		if !g.nicknameInUse(nickname) {
			t.Fatalf("confirmed nickname %q has no pending selection", nickname)
		}
	}
}

func TestGameSelectionFallsBackToIdentity(t *testing.T) {
	f := newGameFixture(t)

	f.svc.SubmitSelection(GameGroup, "c1", &model.Identity{PlayerID: "p1", Nickname: "ana"}, "", []int{7})
	if confirmed, total, _ := f.svc.Status(GameGroup); confirmed != 1 || total != 1 {
		t.Fatalf("status = %d/%d, want 1/1", confirmed, total)
	}

	f.b.reset()
	f.svc.SubmitSelection(GameGroup, "c2", nil, "", []int{7})
	msg, _ := f.b.last()
	if got := asJSON(msg.msg); msg.connID != "c2" || got["type"] != "error" {
		t.Fatalf("anonymous empty nickname = %+v %v, want private error", msg, got)
	}
	if _, total, _ := f.svc.Status(GameGroup); total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
}

func TestGameGroupsAreIndependent(t *testing.T) {
	f := newGameFixture(t)

	f.svc.SubmitSelection("other", "c1", nil, "ana", []int{1})

	if _, total, _ := f.svc.Status(GameGroup); total != 0 {
		t.Fatalf("game group total = %d, want 0", total)
	}
}
