package proxy

import (
	"context"
	"errors"
	"time"

	"github.com/JulianoL13/proxy-list-refresher/internal/common/logs"
)

type LineSource interface {
	Fetch(ctx context.Context) ([]Line, []error)
}

type CandidateVerifier interface {
	Execute(ctx context.Context, candidates []Candidate) []Outcome
}

// ResultWriter persists a finished ResultSet (files, redis, streams).
type ResultWriter interface {
	Write(ctx context.Context, rs ResultSet) error
}

type RefreshOptions struct {
	MaxPerProtocol int
	HTTPSFallback  bool
}

type RefreshProxiesUseCase struct {
	source   LineSource
	verifier CandidateVerifier
	writers  []ResultWriter
	opts     RefreshOptions
	logger   logs.Logger
	now      func() time.Time
}

func NewRefreshProxiesUseCase(
	source LineSource,
	verifier CandidateVerifier,
	opts RefreshOptions,
	logger logs.Logger,
	writers ...ResultWriter,
) *RefreshProxiesUseCase {
	return &RefreshProxiesUseCase{
		source:   source,
		verifier: verifier,
		writers:  writers,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Execute runs one refresh: fetch, validate, write. A ResultSet is always
// returned. The error carries ErrDegradedRun and any writer failures.
func (uc *RefreshProxiesUseCase) Execute(ctx context.Context) (ResultSet, error) {
	uc.logger.Info("starting refresh")

	lines, errs := uc.source.Fetch(ctx)
	if len(errs) > 0 {
		uc.logger.Warn("source fetch errors", "count", len(errs), "error", errors.Join(errs...))
	}
	uc.logger.Info("fetched source lines", "count", len(lines))

	rs := uc.Validate(ctx, lines)

	if rs.Degraded {
		uc.logger.Warn("degraded run, keeping previous outputs", "sources_failed", len(errs))
		return rs, ErrDegradedRun
	}

	var writeErrs []error
	for _, w := range uc.writers {
		if err := w.Write(ctx, rs); err != nil {
			uc.logger.Error("failed to write results", "error", err)
			writeErrs = append(writeErrs, err)
		}
	}

	return rs, errors.Join(writeErrs...)
}

// Validate is the engine proper: normalize, probe, aggregate.
func (uc *RefreshProxiesUseCase) Validate(ctx context.Context, lines []Line) ResultSet {
	candidates := NormalizeLines(lines)
	parsed := len(candidates)
	candidates = CapPerProtocol(candidates, uc.opts.MaxPerProtocol)

	uc.logger.Info("normalized candidates",
		"lines", len(lines),
		"parsed", parsed,
		"selected", len(candidates),
	)

	var outcomes []Outcome
	if len(candidates) > 0 {
		outcomes = uc.verifier.Execute(ctx, candidates)
	}

	rs := Aggregate(outcomes, AggregateOptions{HTTPSFallback: uc.opts.HTTPSFallback})
	rs.Parsed = parsed
	rs.Degraded = parsed == 0
	rs.GeneratedAt = uc.now().UTC()

	if rs.HTTPSFallback {
		uc.logger.Warn("no candidate passed https, serving http list as https", "count", len(rs.HTTPS))
	}
	if parsed > 0 && len(rs.All) == 0 {
		uc.logger.Warn("no working proxies found", "attempted", len(outcomes))
	}

	uc.logger.Info("validation complete",
		"attempted", len(outcomes),
		"http", rs.Summary.HTTP.Working,
		"https", rs.Summary.HTTPS.Working,
		"socks4", rs.Summary.SOCKS4.Working,
		"socks5", rs.Summary.SOCKS5.Working,
		"all", rs.Summary.All.Working,
	)

	return rs
}
