// Package main implements a mock push and SMS gateway for local development.
// It accepts the requests the dispatcher's push and SMS senders make, records
// them for inspection, and can inject failures so retry and abandonment paths
// can be exercised without real provider credentials.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Recipients with these prefixes are rejected permanently.
const (
	unregisteredTokenPrefix = "unregistered-"
	blockedNumberPrefix     = "+1555000"
)

type pushRequest struct {
	To           string `json:"to"`
	Priority     string `json:"priority"`
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Tag   string `json:"tag"`
	} `json:"notification"`
	Data map[string]string `json:"data"`
}

type pushResult struct {
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type pushResponse struct {
	Success int          `json:"success"`
	Failure int          `json:"failure"`
	Results []pushResult `json:"results"`
}

type smsRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// message is one accepted delivery.
type message struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	To        string    `json:"to"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	Received  time.Time `json:"received"`
	Attempted int       `json:"attempted"`
}

// gateway holds accepted messages and the failure injection settings.
type gateway struct {
	mu       sync.Mutex
	messages []message
	attempts map[string]int
	seq      int

	failRate float64
	roll     func() float64
	logger   *slog.Logger
}

func newGateway(logger *slog.Logger, failRate float64) *gateway {
	return &gateway{
		attempts: make(map[string]int),
		failRate: failRate,
		roll:     rand.Float64,
		logger:   logger,
	}
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	failRate := flag.Float64("fail-rate", 0, "fraction of requests answered with 503 (0-1)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	gw := newGateway(logger, *failRate)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock gateway", "addr", addr, "fail_rate", *failRate)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, gw.routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (g *gateway) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /push", g.pushHandler)
	mux.HandleFunc("POST /sms", g.smsHandler)
	mux.HandleFunc("GET /messages", g.messagesHandler)
	mux.HandleFunc("DELETE /messages", g.resetHandler)
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

// injectFailure answers 503 for a fraction of requests.
func (g *gateway) injectFailure(w http.ResponseWriter, channel, to string) bool {
	if g.failRate <= 0 || g.roll() >= g.failRate {
		return false
	}
	g.mu.Lock()
	g.attempts[channel+":"+to]++
	g.mu.Unlock()

	g.logger.Info("injected failure", "channel", channel, "to", to)
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable"})
	return true
}

func (g *gateway) record(channel, to, title, body string) message {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seq++
	key := channel + ":" + to
	g.attempts[key]++
	m := message{
		ID:        fmt.Sprintf("%s-%d", channel, g.seq),
		Channel:   channel,
		To:        to,
		Title:     title,
		Body:      body,
		Received:  time.Now().UTC(),
		Attempted: g.attempts[key],
	}
	g.messages = append(g.messages, m)
	return m
}

func (g *gateway) pushHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "key=") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing server key"})
		return
	}

	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	if strings.HasPrefix(req.To, unregisteredTokenPrefix) {
		writeJSON(w, http.StatusOK, pushResponse{
			Failure: 1,
			Results: []pushResult{{Error: "NotRegistered"}},
		})
		return
	}
	if g.injectFailure(w, "push", req.To) {
		return
	}

	m := g.record("push", req.To, req.Notification.Title, req.Notification.Body)
	g.logger.Info("push accepted", "id", m.ID, "to", req.To, "priority", req.Priority)
	writeJSON(w, http.StatusOK, pushResponse{
		Success: 1,
		Results: []pushResult{{MessageID: m.ID}},
	})
}

func (g *gateway) smsHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing api key"})
		return
	}

	var req smsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.To == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	if strings.HasPrefix(req.To, blockedNumberPrefix) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "number is not reachable"})
		return
	}
	if g.injectFailure(w, "sms", req.To) {
		return
	}

	m := g.record("sms", req.To, "", req.Body)
	g.logger.Info("sms accepted", "id", m.ID, "to", req.To, "chars", len([]rune(req.Body)))
	writeJSON(w, http.StatusAccepted, map[string]string{"id": m.ID, "status": "queued"})
}

func (g *gateway) messagesHandler(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")

	g.mu.Lock()
	out := make([]message, 0, len(g.messages))
	for _, m := range g.messages {
		if channel == "" || m.Channel == channel {
			out = append(out, m)
		}
	}
	g.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"messages": out, "count": len(out)})
}

func (g *gateway) resetHandler(w http.ResponseWriter, _ *http.Request) {
	g.mu.Lock()
	g.messages = nil
	g.attempts = make(map[string]int)
	g.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}
