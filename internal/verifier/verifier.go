package verifier

import (
	"context"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// ProxyChecker probes a single candidate. It must honour ctx cancellation.
type ProxyChecker interface {
	Verify(ctx context.Context, c proxy.Candidate) proxy.Outcome
}

// TaskExecutor runs jobs with bounded concurrency. Submit refuses jobs once
// ctx is done and returns the reason.
type TaskExecutor interface {
	Submit(ctx context.Context, job func(ctx context.Context)) error
}
