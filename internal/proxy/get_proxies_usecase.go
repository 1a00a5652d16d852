package proxy

import (
	"context"
	"slices"
	"time"
)

type GetProxiesLogger interface {
	Info(msg string, args ...any)
}

// SnapshotInfo describes the last stored run.
type SnapshotInfo struct {
	Summary       Summary   `json:"summary"`
	Parsed        int       `json:"parsed"`
	HTTPSFallback bool      `json:"https_fallback"`
	GeneratedAt   time.Time `json:"generated_at"`
}

type Reader interface {
	GetWorking(ctx context.Context, bucket string, cursor, limit int) ([]Entry, int, int, error)
	GetSnapshotInfo(ctx context.Context) (SnapshotInfo, error)
}

type GetProxiesInput struct {
	Bucket string
	Cursor int
	Limit  int
}

type GetProxiesOutput struct {
	Proxies    []Entry
	NextCursor int
	Total      int
}

type GetProxiesUseCase struct {
	reader Reader
	logger GetProxiesLogger
}

func NewGetProxiesUseCase(reader Reader, logger GetProxiesLogger) *GetProxiesUseCase {
	return &GetProxiesUseCase{
		reader: reader,
		logger: logger,
	}
}

func (uc *GetProxiesUseCase) Execute(ctx context.Context, input GetProxiesInput) (GetProxiesOutput, error) {
	bucket := input.Bucket
	if bucket == "" {
		bucket = BucketAll
	}
	if !slices.Contains(BucketNames(), bucket) {
		return GetProxiesOutput{}, ErrUnknownBucket
	}

	proxies, nextCursor, total, err := uc.reader.GetWorking(ctx, bucket, input.Cursor, input.Limit)
	if err != nil {
		return GetProxiesOutput{}, err
	}

	uc.logger.Info("fetched proxies", "bucket", bucket, "count", len(proxies), "total", total)

	return GetProxiesOutput{
		Proxies:    proxies,
		NextCursor: nextCursor,
		Total:      total,
	}, nil
}
