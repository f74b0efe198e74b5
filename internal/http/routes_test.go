package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rps_link/internal/config"
	"rps_link/internal/domain"
	"rps_link/internal/repository"
	"rps_link/internal/service"
	"rps_link/internal/ws"

	"github.com/gin-gonic/gin"
)

type api struct {
	t *testing.T
	r *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("routes-test-secret", time.Hour)

	store := repository.NewMemoryStore()
	hub := ws.NewHub()
	cfg := &config.Config{
		AppVersion:     "test",
		Store:          config.StoreMemory,
		APIRateLimit:   1000,
		APIRateWindow:  time.Minute,
		GameRateLimit:  1000,
		GameRateWindow: time.Minute,
		AllowedOrigin:  "*",
		DefaultMode:    domain.GameModeFeed,
	}

	r := gin.New()
	RegisterRoutes(r, Deps{
		Config:   cfg,
		Store:    store,
		Games:    service.NewGameService(store, hub, cfg.DefaultMode),
		Accounts: service.NewAccountService(store),
		Hub:      hub,
	})
	return &api{t: t, r: r}
}

func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			a.t.Fatalf("%s %s: bad json %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, out
}

func (a *api) signup(name string) (token, id string) {
	a.t.Helper()
	var body any
	if name != "" {
		body = gin.H{"display_name": name}
	}
	code, out := a.do(http.MethodPost, "/api/v1/auth", "", body)
	if code != http.StatusCreated {
		a.t.Fatalf("auth: expected 201 got %d %v", code, out)
	}
	user := out["user"].(map[string]any)
	return out["token"].(string), user["id"].(string)
}

func TestGameFlow(t *testing.T) {
	a := newAPI(t)
	hostTok, _ := a.signup("Alice")
	guestTok, guestID := a.signup("")
	lateTok, _ := a.signup("Late")

	code, created := a.do(http.MethodPost, "/api/v1/games", hostTok, gin.H{"move": "rock", "comment": " hi "})
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d %v", code, created)
	}
	gameID := created["id"].(string)
	if created["host_move"] != "ROCK" || created["comment"] != "hi" || created["role"] != "host" || created["mode"] != "feed" {
		t.Fatalf("unexpected created game: %v", created)
	}

	code, view := a.do(http.MethodGet, "/api/v1/games/"+gameID, guestTok, nil)
	if code != http.StatusOK {
		t.Fatalf("get: expected 200 got %d", code)
	}
	if _, leaked := view["host_move"]; leaked {
		t.Fatalf("host move leaked before playing: %v", view)
	}
	if view["can_play"] != true || view["host_name"] != "Alice" || view["status"] != "OPEN" {
		t.Fatalf("unexpected guest view: %v", view)
	}

	code, played := a.do(http.MethodPost, "/api/v1/games/"+gameID+"/plays", guestTok, gin.H{"move": "PAPER"})
	if code != http.StatusCreated {
		t.Fatalf("play: expected 201 got %d %v", code, played)
	}
	if played["outcome"] != "GUEST" || played["result"] != "won" || played["host_move"] != "ROCK" {
		t.Fatalf("unexpected play result: %v", played)
	}

	code, again := a.do(http.MethodPost, "/api/v1/games/"+gameID+"/plays", guestTok, gin.H{"move": "scissors"})
	if code != http.StatusConflict || again["code"] != "already_played" {
		t.Fatalf("replay: expected 409 already_played got %d %v", code, again)
	}
	if prev, ok := again["play"].(map[string]any); !ok || prev["outcome"] != "GUEST" || prev["guest_move"] != "PAPER" {
		t.Fatalf("replay should return the standing play: %v", again)
	}

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
		code   string
	}{
		{"host plays own game", http.MethodPost, "/plays", hostTok, gin.H{"move": "paper"}, http.StatusForbidden, "host_cannot_play"},
		{"invalid move", http.MethodPost, "/plays", lateTok, gin.H{"move": "lizard"}, http.StatusBadRequest, "invalid_move"},
		{"missing move", http.MethodPost, "/plays", lateTok, gin.H{}, http.StatusBadRequest, "invalid_move"},
		{"guest archives", http.MethodPost, "/archive", guestTok, nil, http.StatusForbidden, "not_host"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, out := a.do(c.method, "/api/v1/games/"+gameID+c.path, c.token, c.body)
			if code != c.want || out["code"] != c.code {
				t.Fatalf("expected %d %s got %d %v", c.want, c.code, code, out)
			}
		})
	}

	code, archived := a.do(http.MethodPost, "/api/v1/games/"+gameID+"/archive", hostTok, nil)
	if code != http.StatusOK || archived["archived"] != true {
		t.Fatalf("archive: expected 200 got %d %v", code, archived)
	}

	code, gone := a.do(http.MethodPost, "/api/v1/games/"+gameID+"/plays", lateTok, gin.H{"move": "rock"})
	if code != http.StatusGone || gone["code"] != "game_archived" {
		t.Fatalf("play on archived: expected 410 got %d %v", code, gone)
	}

	code, dash := a.do(http.MethodGet, "/api/v1/dashboard", guestTok, nil)
	if code != http.StatusOK || dash["default_tab"] != "guest_games" {
		t.Fatalf("dashboard: unexpected %d %v", code, dash)
	}
	entries := dash["guest_games"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected 1 guest game got %d", len(entries))
	}
	entry := entries[0].(map[string]any)
	if entry["game_id"] != gameID || entry["status"] != "ARCHIVED" || entry["host_name"] != "Alice" || entry["result"] != "won" {
		t.Fatalf("unexpected dashboard entry: %v", entry)
	}

	code, hostDash := a.do(http.MethodGet, "/api/v1/dashboard", hostTok, nil)
	if code != http.StatusOK || hostDash["default_tab"] != "my_games" {
		t.Fatalf("host dashboard: unexpected %d %v", code, hostDash)
	}

	code, hostView := a.do(http.MethodGet, "/api/v1/games/"+gameID, hostTok, nil)
	if code != http.StatusOK {
		t.Fatalf("host view: %d", code)
	}
	plays := hostView["plays"].([]any)
	if len(plays) != 1 || plays[0].(map[string]any)["guest_id"] != guestID {
		t.Fatalf("unexpected host plays: %v", plays)
	}
}

func TestCreateGameErrors(t *testing.T) {
	a := newAPI(t)
	tok, _ := a.signup("")

	long := strings.Repeat("x", domain.MaxCommentLength+1)
	cases := []struct {
		name string
		body any
		want int
		code string
	}{
		{"bad move", gin.H{"move": "spock"}, http.StatusBadRequest, "invalid_move"},
		{"bad mode", gin.H{"move": "rock", "mode": "ladder"}, http.StatusBadRequest, "invalid_mode"},
		{"long comment", gin.H{"move": "rock", "comment": long}, http.StatusBadRequest, "comment_too_long"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, out := a.do(http.MethodPost, "/api/v1/games", tok, c.body)
			if code != c.want || out["code"] != c.code {
				t.Fatalf("expected %d %s got %d %v", c.want, c.code, code, out)
			}
		})
	}

	code, out := a.do(http.MethodPost, "/api/v1/games", tok, gin.H{"move": "scissors", "comment": strings.Repeat("y", domain.MaxCommentLength), "mode": "single"})
	if code != http.StatusCreated || out["mode"] != "single" {
		t.Fatalf("100-char comment should be accepted: %d %v", code, out)
	}
}

func TestNotFoundAndAuth(t *testing.T) {
	a := newAPI(t)
	tok, _ := a.signup("")

	if code, out := a.do(http.MethodGet, "/api/v1/games/does-not-exist", tok, nil); code != http.StatusNotFound || out["code"] != "not_found" {
		t.Fatalf("expected 404 got %d %v", code, out)
	}
	if code, _ := a.do(http.MethodGet, "/api/v1/games/x", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", code)
	}
	if code, _ := a.do(http.MethodGet, "/api/v1/dashboard", "bogus", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token got %d", code)
	}

	// token for an account the store does not know
	ghost, err := service.GenerateJWT("ghost")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if code, out := a.do(http.MethodPost, "/api/v1/games", ghost, gin.H{"move": "rock"}); code != http.StatusUnauthorized || out["code"] != "unknown_user" {
		t.Fatalf("expected 401 unknown_user got %d %v", code, out)
	}
}

func TestMeAndLegacyRoutes(t *testing.T) {
	a := newAPI(t)
	tok, id := a.signup("")

	code, me := a.do(http.MethodGet, "/api/me", tok, nil)
	if code != http.StatusOK || me["id"] != id || me["display_name"] != domain.DefaultDisplayName {
		t.Fatalf("legacy /api/me: %d %v", code, me)
	}

	code, renamed := a.do(http.MethodPatch, "/api/v1/me", tok, gin.H{"display_name": "Zed"})
	if code != http.StatusOK || renamed["display_name"] != "Zed" {
		t.Fatalf("rename: %d %v", code, renamed)
	}

	code, bad := a.do(http.MethodPatch, "/api/v1/me", tok, gin.H{"display_name": strings.Repeat("n", domain.MaxDisplayNameLength+1)})
	if code != http.StatusBadRequest || bad["code"] != "invalid_name" {
		t.Fatalf("expected 400 invalid_name got %d %v", code, bad)
	}
}

func TestHealthEndpoints(t *testing.T) {
	a := newAPI(t)
	for _, path := range []string{"/health", "/healthz", "/readyz", "/api/health"} {
		if code, _ := a.do(http.MethodGet, path, "", nil); code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, code)
		}
	}

	code, ready := a.do(http.MethodGet, "/readyz", "", nil)
	checks := ready["checks"].(map[string]any)
	if code != http.StatusOK || checks["store_backend"] != "memory" {
		t.Fatalf("unexpected readiness: %v", ready)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("metrics endpoint not serving: %d", w.Code)
	}
}
