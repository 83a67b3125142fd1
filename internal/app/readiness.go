package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"aitrip_ai/internal/domain"
)

// Check is one readiness probe. Only required checks can make the service unready.
type Check struct {
	Name     string
	Required bool
	Probe    domain.Pinger
}

type CheckResult struct {
	Status string `json:"status"` // ok|down
	Error  string `json:"error,omitempty"`
}

type Readiness struct {
	Status string                 `json:"status"` // ok|degraded|unavailable
	Checks map[string]CheckResult `json:"checks"`
}

// PingFunc adapts a function to domain.Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type ReadinessService struct {
	checks  []Check
	timeout time.Duration
}

func NewReadinessService(timeout time.Duration, checks ...Check) *ReadinessService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ReadinessService{checks: checks, timeout: timeout}
}

// Ready runs every probe concurrently and reports whether all required ones passed.
func (s *ReadinessService) Ready(ctx context.Context) (Readiness, bool) {
	out := Readiness{Status: "ok", Checks: make(map[string]CheckResult, len(s.checks))}
	var mu sync.Mutex
	ready := true

	var g errgroup.Group
	for _, c := range s.checks {
		c := c
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckResult{Status: "ok"}
			if err := c.Probe.Ping(cctx); err != nil {
				res = CheckResult{Status: "down", Error: err.Error()}
			}

			mu.Lock()
			defer mu.Unlock()
			out.Checks[c.Name] = res
			if res.Status == "down" {
				if c.Required {
					ready = false
					out.Status = "unavailable"
				} else if out.Status == "ok" {
					out.Status = "degraded"
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, ready
}
