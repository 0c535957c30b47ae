package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/solver-dispatch/config"
	"github.com/angeloszaimis/solver-dispatch/internal/cube"
	"github.com/angeloszaimis/solver-dispatch/internal/local"
	"github.com/angeloszaimis/solver-dispatch/internal/solver"
	"github.com/angeloszaimis/solver-dispatch/pkg/logger"
)

const solvedState = "UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB"

// scrambled is solvedState with one U and one R facelet swapped; the
// distribution stays valid.
var scrambled = "R" + solvedState[1:9] + "U" + solvedState[10:]

func testConfig() *config.Config {
	return &config.Config{
		Environment: config.EnvDev,
		Logging:     config.LoggingConfig{Level: config.LogLevelDebug},
		Remote: config.RemoteConfig{
			Enabled:    true,
			Timeout:    time.Second,
			MaxRetries: 1,
		},
		Breaker:  config.BreakerConfig{Threshold: 3, ResetTimeout: 30 * time.Second},
		Cache:    config.CacheConfig{Capacity: 32},
		Local:    config.LocalConfig{Command: "fake", Timeout: time.Second},
		Dispatch: config.DispatchConfig{Deadline: 5 * time.Second},
	}
}

type fakeComputer struct {
	calls atomic.Int32
}

func (c *fakeComputer) Compute(state string) ([]string, error) {
	c.calls.Add(1)
	if state == solvedState {
		return nil, nil
	}
	if strings.HasPrefix(state, "B") {
		return nil, fmt.Errorf("%w: probably cubie twisted", solver.ErrUnsolvable)
	}
	if strings.HasPrefix(state, "L") {
		return nil, errors.New("solver crashed")
	}
	return []string{"R'", "U"}, nil
}

var _ = Describe("app", func() {
	var (
		ctx      context.Context
		cfg      *config.Config
		computer *fakeComputer
	)

	newTestApp := func() *app {
		a, err := newApp(cfg, logger.Discard(), computer)
		Expect(err).NotTo(HaveOccurred())
		return a
	}

	BeforeEach(func() {
		ctx = context.Background()
		cfg = testConfig()
		computer = &fakeComputer{}
	})

	Context("without a remote", func() {
		It("should solve locally", func() {
			result, failure := newTestApp().solve(ctx, scrambled)
			Expect(failure).To(BeNil())
			Expect(result.Source).To(Equal("local"))
			Expect(result.Moves).To(Equal([]string{"R'", "U"}))
		})

		It("should normalize the state first", func() {
			a := newTestApp()
			_, failure := a.solve(ctx, "  "+strings.ToLower(scrambled)+"\n")
			Expect(failure).To(BeNil())

			_, failure = a.solve(ctx, scrambled)
			Expect(failure).To(BeNil())
			Expect(computer.calls.Load()).To(Equal(int32(1)))
		})

		It("should return an empty move list for a solved cube", func() {
			result, failure := newTestApp().solve(ctx, solvedState)
			Expect(failure).To(BeNil())
			Expect(result.Moves).NotTo(BeNil())
			Expect(result.Moves).To(BeEmpty())
		})

		It("should reject invalid states without solving", func() {
			_, failure := newTestApp().solve(ctx, "UUU")
			Expect(failure).NotTo(BeNil())
			Expect(failure.Error).To(Equal("invalid_length"))
			Expect(computer.calls.Load()).To(BeZero())
		})

		It("should report a state the solver rejects as unsolvable", func() {
			state := "B" + solvedState[1:45] + "U" + solvedState[46:]
			_, failure := newTestApp().solve(ctx, state)
			Expect(failure).NotTo(BeNil())
			Expect(failure.Error).To(Equal(cube.CodeUnsolvable))
		})

		It("should report any other local failure as compute_failed", func() {
			state := "L" + solvedState[1:36] + "U" + solvedState[37:]
			_, failure := newTestApp().solve(ctx, state)
			Expect(failure).NotTo(BeNil())
			Expect(failure.Error).To(Equal(solver.KindCompute.String()))
		})
	})

	Context("with a remote", func() {
		var (
			hits    atomic.Int32
			healthy atomic.Bool
			server  *httptest.Server
		)

		BeforeEach(func() {
			hits.Store(0)
			healthy.Store(true)
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				if !healthy.Load() {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				_, _ = w.Write([]byte(`{"moves": ["F2"]}`))
			}))
			DeferCleanup(server.Close)
			cfg.Remote.URL = server.URL
		})

		It("should prefer the remote", func() {
			result, failure := newTestApp().solve(ctx, scrambled)
			Expect(failure).To(BeNil())
			Expect(result.Source).To(Equal("remote"))
			Expect(result.Moves).To(Equal([]string{"F2"}))
			Expect(computer.calls.Load()).To(BeZero())
		})

		It("should fall back locally when the remote fails", func() {
			healthy.Store(false)

			result, failure := newTestApp().solve(ctx, scrambled)
			Expect(failure).To(BeNil())
			Expect(result.Source).To(Equal("local"))
			Expect(hits.Load()).To(Equal(int32(2)))
		})

		It("should share the breaker across requests", func() {
			healthy.Store(false)
			cfg.Breaker.Threshold = 2
			a := newTestApp()

			_, failure := a.solve(ctx, scrambled)
			Expect(failure).To(BeNil())
			Expect(a.breakers.GetBreaker(server.URL).State().String()).To(Equal("OPEN"))

			result, failure := a.solve(ctx, scrambled)
			Expect(failure).To(BeNil())
			Expect(result.Source).To(Equal("local"))
			Expect(hits.Load()).To(Equal(int32(2)))
		})

		It("should skip the remote when it is switched off", func() {
			cfg.Remote.Enabled = false
			result, failure := newTestApp().solve(ctx, scrambled)
			Expect(failure).To(BeNil())
			Expect(result.Source).To(Equal("local"))
			Expect(hits.Load()).To(BeZero())
		})
	})
})

var _ = Describe("execComputer", func() {
	It("should carry the configured timeout", func() {
		c := execComputer(config.LocalConfig{
			Command: "kociemba",
			Args:    []string{"--quiet"},
			Timeout: 2 * time.Second,
		})

		exec, ok := c.(*local.ExecComputer)
		Expect(ok).To(BeTrue())
		Expect(exec.Command).To(Equal("kociemba"))
		Expect(exec.Args).To(Equal([]string{"--quiet"}))
		Expect(exec.Timeout).To(Equal(2 * time.Second))
	})
})
