package checks

import (
	"context"
	"time"

	"github.com/charlesng35/pitchbase/internal/monitoring"
)

const defaultRedisTimeout = 2 * time.Second

// Pinger is satisfied by the rate-limit cache store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Redis returns a readiness probe for the rate-limit cache. A nil client means the memory
// store is in use and the probe reports up.
func Redis(client Pinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		if client == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "redis disabled"}
		}

		start := time.Now()
		probeCtx, cancel := context.WithTimeout(ctx, orDefault(timeout, defaultRedisTimeout))
		defer cancel()

		return monitoring.ResultFromError("redis", client.Ping(probeCtx), time.Since(start))
	})
}
