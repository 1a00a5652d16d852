package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
)

const sourceTimeout = 45 * time.Second

type Fetcher interface {
	FetchLines(ctx context.Context, source Source) ([]string, error)
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type ScrapeProxiesUseCase struct {
	fetcher Fetcher
	sources []Source
	logger  Logger
}

func NewScrapeProxiesUseCase(f Fetcher, sources []Source, logger Logger) *ScrapeProxiesUseCase {
	return &ScrapeProxiesUseCase{
		fetcher: f,
		sources: sources,
		logger:  logger,
	}
}

// Execute fetches every source concurrently. Lines come back grouped in
// source order; a failing source contributes an error and no lines.
func (uc *ScrapeProxiesUseCase) Execute(ctx context.Context) ([]RawLine, []error) {
	var wg sync.WaitGroup
	batches := make([][]RawLine, len(uc.sources))
	failures := make([]error, len(uc.sources))

	for i, src := range uc.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()

			timeoutCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
			defer cancel()

			lines, err := uc.fetcher.FetchLines(timeoutCtx, src)
			if err != nil {
				failures[i] = fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, src.Name, err)
				uc.logger.Warn("source fetch failed", "source", src.Name, "error", err)
				return
			}

			batches[i] = lo.Map(lines, func(text string, _ int) RawLine {
				return RawLine{Text: text, Type: src.Type, Source: src.Name}
			})
			uc.logger.Debug("source fetched", "source", src.Name, "count", len(lines))
		}()
	}

	wg.Wait()

	result := lo.Flatten(batches)
	errs := lo.Compact(failures)

	uc.logger.Info("scraping completed", "sources", len(uc.sources), "failed", len(errs), "lines", len(result))
	return result, errs
}
