package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL = 90 * time.Minute
)

// Repository stores the latest ResultSet as a snapshot. Each Write replaces
// the previous snapshot in a single transaction.
type Repository struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

func NewRepository(client *redis.Client, keyPrefix string) *Repository {
	if keyPrefix == "" {
		keyPrefix = "proxies"
	}
	return &Repository{
		client:    client,
		ttl:       defaultTTL,
		keyPrefix: keyPrefix,
	}
}

func (r *Repository) WithTTL(ttl time.Duration) *Repository {
	r.ttl = ttl
	return r
}

func (r *Repository) bucketKey(bucket string) string {
	return fmt.Sprintf("%s:bucket:%s", r.keyPrefix, bucket)
}

func (r *Repository) entriesKey() string {
	return fmt.Sprintf("%s:entries", r.keyPrefix)
}

func (r *Repository) summaryKey() string {
	return fmt.Sprintf("%s:summary", r.keyPrefix)
}

type entryRecord struct {
	Host      string   `json:"host"`
	Port      int      `json:"port"`
	Declared  string   `json:"declared"`
	Protocols []string `json:"protocols"`
	LatencyMS int64    `json:"latency_ms"`
}

func toRecord(e proxy.Entry) entryRecord {
	return entryRecord{
		Host:      e.Candidate.Host,
		Port:      e.Candidate.Port,
		Declared:  string(e.Candidate.Declared),
		Protocols: e.Protocols.Strings(),
		LatencyMS: e.Latency.Milliseconds(),
	}
}

func (rec entryRecord) toEntry() (proxy.Entry, error) {
	protocols, err := proxy.ParseProtocolSet(strings.Join(rec.Protocols, ","))
	if err != nil {
		return proxy.Entry{}, err
	}
	declared, _ := proxy.ParseProtocol(rec.Declared)
	return proxy.Entry{
		Candidate: proxy.NewCandidate(rec.Host, rec.Port, declared),
		Protocols: protocols,
		Latency:   time.Duration(rec.LatencyMS) * time.Millisecond,
	}, nil
}

// Write replaces the stored snapshot with rs. Bucket members are scored by
// their position so reads keep the ResultSet order.
func (r *Repository) Write(ctx context.Context, rs proxy.ResultSet) error {
	entries := make(map[string]interface{}, len(rs.All))
	for _, e := range rs.All {
		data, err := json.Marshal(toRecord(e))
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		entries[e.Address()] = data
	}

	info, err := json.Marshal(proxy.SnapshotInfo{
		Summary:       rs.Summary,
		Parsed:        rs.Parsed,
		HTTPSFallback: rs.HTTPSFallback,
		GeneratedAt:   rs.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	pipe := r.client.TxPipeline()

	keys := []string{r.entriesKey(), r.summaryKey()}
	for _, name := range proxy.BucketNames() {
		keys = append(keys, r.bucketKey(name))
	}
	pipe.Del(ctx, keys...)

	if len(entries) > 0 {
		pipe.HSet(ctx, r.entriesKey(), entries)
		pipe.Expire(ctx, r.entriesKey(), r.ttl)
	}

	for _, name := range proxy.BucketNames() {
		bucket, _ := rs.Bucket(name)
		if len(bucket) == 0 {
			continue
		}
		members := make([]redis.Z, len(bucket))
		for i, e := range bucket {
			members[i] = redis.Z{Score: float64(i), Member: e.Address()}
		}
		pipe.ZAdd(ctx, r.bucketKey(name), members...)
		pipe.Expire(ctx, r.bucketKey(name), r.ttl)
	}

	pipe.Set(ctx, r.summaryKey(), info, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// GetWorking pages through a bucket. cursor is the offset of the first entry;
// the returned next cursor is 0 once the bucket is exhausted. A limit of 0
// returns everything from cursor on.
func (r *Repository) GetWorking(ctx context.Context, bucket string, cursor, limit int) ([]proxy.Entry, int, int, error) {
	key := r.bucketKey(bucket)

	total, err := r.client.ZCard(ctx, key).Result()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("zcard: %w", err)
	}
	if total == 0 || int64(cursor) >= total {
		return nil, 0, int(total), nil
	}

	stop := int64(-1)
	if limit > 0 {
		stop = int64(cursor + limit - 1)
	}

	addresses, err := r.client.ZRange(ctx, key, int64(cursor), stop).Result()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("zrange: %w", err)
	}
	if len(addresses) == 0 {
		return nil, 0, int(total), nil
	}

	values, err := r.client.HMGet(ctx, r.entriesKey(), addresses...).Result()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("hmget entries: %w", err)
	}

	out := make([]proxy.Entry, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}

		var rec entryRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue
		}
		e, err := rec.toEntry()
		if err != nil {
			continue
		}
		out = append(out, e)
	}

	var next int
	if end := cursor + len(addresses); int64(end) < total {
		next = end
	}

	return out, next, int(total), nil
}

func (r *Repository) GetSnapshotInfo(ctx context.Context) (proxy.SnapshotInfo, error) {
	data, err := r.client.Get(ctx, r.summaryKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return proxy.SnapshotInfo{}, proxy.ErrNoSnapshot
	}
	if err != nil {
		return proxy.SnapshotInfo{}, fmt.Errorf("get summary: %w", err)
	}

	var info proxy.SnapshotInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return proxy.SnapshotInfo{}, fmt.Errorf("decode summary: %w", err)
	}
	return info, nil
}

var (
	_ proxy.Reader       = (*Repository)(nil)
	_ proxy.ResultWriter = (*Repository)(nil)
)
