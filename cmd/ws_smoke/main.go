package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"rps_link/internal/logger"

	"github.com/gorilla/websocket"
)

// Smoke test against a running server: a host creates a game, a guest
// subscribes over the socket, plays over HTTP and must see the event.
func main() {
	base := flag.String("addr", "http://127.0.0.1:8080", "server base url")
	flag.Parse()

	if err := run(strings.TrimRight(*base, "/")); err != nil {
		logger.Error("smoke test failed", "error", err)
		os.Exit(1)
	}
	logger.Info("smoke test finished")
}

func run(base string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	hostTok, err := signup(client, base, "Smoke Host")
	if err != nil {
		return fmt.Errorf("host signup: %w", err)
	}
	guestTok, err := signup(client, base, "Smoke Guest")
	if err != nil {
		return fmt.Errorf("guest signup: %w", err)
	}

	var game struct {
		ID string `json:"id"`
	}
	if err := call(client, http.MethodPost, base+"/api/v1/games", hostTok, map[string]string{"move": "rock", "comment": "smoke"}, http.StatusCreated, &game); err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws?token=" + url.QueryEscape(guestTok) + "&game=" + url.QueryEscape(game.ID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := expect(conn, "subscribed"); err != nil {
		return err
	}

	var play map[string]any
	if err := call(client, http.MethodPost, base+"/api/v1/games/"+game.ID+"/plays", guestTok, map[string]string{"move": "scissors"}, http.StatusCreated, &play); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	logger.Info("play recorded", "outcome", play["outcome"], "result", play["result"])

	return expect(conn, "play_recorded")
}

func signup(client *http.Client, base, name string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := call(client, http.MethodPost, base+"/api/v1/auth", "", map[string]string{"display_name": name}, http.StatusCreated, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func call(client *http.Client, method, u, token string, body any, want int, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != want {
		return fmt.Errorf("%s %s: expected %d got %d", method, u, want, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func expect(conn *websocket.Conn, msgType string) error {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("waiting for %s: %w", msgType, err)
		}
		var obj map[string]any
		_ = json.Unmarshal(msg, &obj)
		if t, ok := obj["type"].(string); ok && t == msgType {
			logger.Info("ws message", "type", t)
			return nil
		}
	}
	return fmt.Errorf("no %s message", msgType)
}
