// Stubsolver is a fake remote solver used to exercise solverctl's retry,
// circuit breaker and fallback paths by hand.
//
// Usage:
//
//	go run stubsolver.go -port 8000
//	go run stubsolver.go -port 8000 -fail-every 3 -latency 300ms
//	go run stubsolver.go -port 8000 -mode malformed
//
// Then point solverctl at it with SOLVER_REMOTE_URL=http://localhost:8000/solve.
//
// Modes:
//
//	ok         - answer {"moves": [...]}
//	error      - answer 503 on every request
//	malformed  - answer {"moves": "R U"} (a string, not an array)
package main

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

var faces = []string{"U", "R", "F", "D", "L", "B"}
var turns = []string{"", "'", "2"}

type solveRequest struct {
	State string `json:"state"`
}

// fakeMoves derives a stable move sequence from the state so repeated calls
// for the same state agree.
func fakeMoves(state string) []string {
	sum := sha256.Sum256([]byte(state))
	moves := make([]string, 0, 8)
	for _, b := range sum[:8] {
		moves = append(moves, faces[int(b)%len(faces)]+turns[int(b>>4)%len(turns)])
	}
	return moves
}

func main() {
	port := flag.Int("port", 8000, "port to listen on")
	mode := flag.String("mode", "ok", "response mode: ok, error or malformed")
	failEvery := flag.Int("fail-every", 0, "answer 503 on every Nth request (0 disables)")
	latency := flag.Duration("latency", 0, "delay before answering")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var count atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("POST /solve", func(w http.ResponseWriter, r *http.Request) {
		n := count.Add(1)
		time.Sleep(*latency)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var req solveRequest
		if err := json.Unmarshal(body, &req); err != nil || req.State == "" {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		log.Info("request", slog.Int64("n", n), slog.String("mode", *mode), slog.Int("state_len", len(req.State)))

		if *mode == "error" || (*failEvery > 0 && n%int64(*failEvery) == 0) {
			http.Error(w, "solver busy", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if *mode == "malformed" {
			_, _ = w.Write([]byte(`{"moves": "R U"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"moves": fakeMoves(req.State)})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Info("starting stub solver", slog.String("address", addr), slog.String("mode", *mode))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
