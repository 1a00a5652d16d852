package proxy

import (
	"context"
	"math/rand/v2"
	"slices"
)

type GetRandomProxyLogger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

type GetRandomProxyUseCase struct {
	reader Reader
	logger GetRandomProxyLogger
	intn   func(n int) int
}

func NewGetRandomProxyUseCase(reader Reader, logger GetRandomProxyLogger) *GetRandomProxyUseCase {
	return &GetRandomProxyUseCase{
		reader: reader,
		logger: logger,
		intn:   rand.IntN,
	}
}

func (uc *GetRandomProxyUseCase) Execute(ctx context.Context, bucket string) (Entry, error) {
	if bucket == "" {
		bucket = BucketAll
	}
	if !slices.Contains(BucketNames(), bucket) {
		return Entry{}, ErrUnknownBucket
	}

	proxies, _, _, err := uc.reader.GetWorking(ctx, bucket, 0, 0)
	if err != nil {
		return Entry{}, err
	}

	if len(proxies) == 0 {
		return Entry{}, ErrNoProxiesAvailable
	}

	selected := proxies[uc.intn(len(proxies))]
	uc.logger.Debug("selected random proxy", "address", selected.Address(), "bucket", bucket)

	return selected, nil
}
