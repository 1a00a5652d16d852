package verifier

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
)

const progressEvery = 100

type VerifyCandidatesUseCase struct {
	checker       ProxyChecker
	pool          TaskExecutor
	logger        Logger
	globalTimeout time.Duration
}

func NewVerifyCandidatesUseCase(checker ProxyChecker, pool TaskExecutor, logger Logger, globalTimeout time.Duration) *VerifyCandidatesUseCase {
	return &VerifyCandidatesUseCase{
		checker:       checker,
		pool:          pool,
		logger:        logger,
		globalTimeout: globalTimeout,
	}
}

type slot struct {
	outcome proxy.Outcome
	done    bool
}

// Execute probes every candidate at most once and returns one outcome per
// completed probe, in input order. Probes still running when the global
// budget expires are cancelled and left out, as are candidates never started.
func (uc *VerifyCandidatesUseCase) Execute(ctx context.Context, candidates []proxy.Candidate) []proxy.Outcome {
	if len(candidates) == 0 {
		return nil
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if uc.globalTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, uc.globalTimeout)
	}
	defer cancel()

	uc.logger.Info("starting proxy verification", "count", len(candidates), "global_timeout", uc.globalTimeout)
	start := time.Now()

	// each index is written by exactly one job and read after wg.Wait
	slots := make([]slot, len(candidates))

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
		working   atomic.Int64
		cancelled atomic.Int64
		submitted int
	)

	for i, c := range candidates {
		wg.Add(1)
		err := uc.pool.Submit(runCtx, func(jobCtx context.Context) {
			defer wg.Done()

			if jobCtx.Err() != nil {
				cancelled.Add(1)
				return
			}

			out := uc.checker.Verify(jobCtx, c)

			if jobCtx.Err() != nil || out.Cancelled() {
				cancelled.Add(1)
				uc.logger.Debug("probe cancelled", "address", c.Address())
				return
			}

			slots[i] = slot{outcome: out, done: true}

			if !out.Succeeded.IsEmpty() {
				working.Add(1)
			}
			if n := completed.Add(1); n%progressEvery == 0 {
				uc.logger.Info("progress", "processed", n, "working", working.Load(), "total", len(candidates))
			}
		})
		if err != nil {
			wg.Done()
			if runCtx.Err() != nil {
				break
			}
			uc.logger.Warn("failed to submit probe", "address", c.Address(), "error", err)
			continue
		}
		submitted++
	}

	wg.Wait()

	outcomes := make([]proxy.Outcome, 0, completed.Load())
	for _, s := range slots {
		if s.done {
			outcomes = append(outcomes, s.outcome)
		}
	}

	uc.logger.Info("verification completed",
		"completed", len(outcomes),
		"working", working.Load(),
		"cancelled", cancelled.Load(),
		"unattempted", len(candidates)-submitted,
		"budget_exceeded", runCtx.Err() != nil && ctx.Err() == nil,
		"elapsed", time.Since(start),
	)

	return outcomes
}
