package main

import (
	"context"
	"crypto/tls"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/JulianoL13/proxy-list-refresher/internal/common/logs"
	"github.com/JulianoL13/proxy-list-refresher/internal/common/logs/slog"
	queueredis "github.com/JulianoL13/proxy-list-refresher/internal/common/queue/redis"
	"github.com/JulianoL13/proxy-list-refresher/internal/common/workerpool"
	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
	"github.com/JulianoL13/proxy-list-refresher/internal/proxy/adapters"
	"github.com/JulianoL13/proxy-list-refresher/internal/proxy/file"
	proxyredis "github.com/JulianoL13/proxy-list-refresher/internal/proxy/redis"
	"github.com/JulianoL13/proxy-list-refresher/internal/scraper"
	httpclient "github.com/JulianoL13/proxy-list-refresher/internal/scraper/http"
	"github.com/JulianoL13/proxy-list-refresher/internal/verifier"
	httpverifier "github.com/JulianoL13/proxy-list-refresher/internal/verifier/http"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const exitDegraded = 2

type Config struct {
	Concurrency        int
	ProbeTimeout       time.Duration
	GlobalTimeout      time.Duration
	Protocols          string
	OpportunisticSOCKS bool
	HTTPSFallback      bool
	MaxPerType         int
	TestURLHTTP        string
	TestURLHTTPS       string
	TLSInsecure        bool

	SourcesFile string
	OutputDir   string
	ReadmePath  string

	RedisAddr      string
	RedisPass      string
	RedisDB        int
	RedisKeyPrefix string
	RedisTopic     string
	ProxyTTL       time.Duration

	LogLevel  string
	LogFormat string
}

func loadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Concurrency:        getEnvInt("PROXY_CONCURRENCY", 200),
		ProbeTimeout:       time.Duration(getEnvInt("PROXY_TIMEOUT_SEC", 8)) * time.Second,
		GlobalTimeout:      time.Duration(getEnvInt("PROXY_GLOBAL_TIMEOUT_SEC", 0)) * time.Second,
		Protocols:          getEnv("PROXY_PROTOCOLS", "http,https,socks4,socks5"),
		OpportunisticSOCKS: getEnvBool("PROXY_OPPORTUNISTIC_SOCKS", false),
		HTTPSFallback:      getEnvBool("PROXY_HTTPS_FALLBACK", true),
		MaxPerType:         getEnvInt("PROXY_MAX_PER_TYPE", 2000),
		TestURLHTTP:        getEnv("PROXY_TEST_URL_HTTP", httpverifier.DefaultHTTPURL),
		TestURLHTTPS:       getEnv("PROXY_TEST_URL_HTTPS", httpverifier.DefaultHTTPSURL),
		TLSInsecure:        getEnvBool("PROXY_TLS_INSECURE", false),

		SourcesFile: getEnv("SOURCES_FILE", "scripts/sources.txt"),
		OutputDir:   getEnv("OUTPUT_DIR", "proxies"),
		ReadmePath:  getEnv("README_PATH", "README.md"),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPass:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "proxies"),
		RedisTopic:     getEnv("REDIS_TOPIC_VALIDATED", "proxies:validated"),
		ProxyTTL:       time.Duration(getEnvInt("PROXY_TTL_MINUTES", 90)) * time.Minute,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func newLogger(cfg Config) logs.Logger {
	level := slog.ParseLevel(cfg.LogLevel)
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(level)
	}
	return slog.NewJSON(level)
}

func loadSources(path string, logger logs.Logger) ([]scraper.Source, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info("sources file not found, using built-in sources", "path", path)
		return scraper.PublicSources(), nil
	}
	return scraper.LoadSources(path)
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := loadConfig()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	protocols, err := proxy.ParseProtocolSet(cfg.Protocols)
	if err != nil {
		logger.Error("invalid PROXY_PROTOCOLS", "error", err)
		return 1
	}

	sources, err := loadSources(cfg.SourcesFile, logger)
	if err != nil {
		logger.Error("failed to load sources", "error", err)
		return 1
	}

	pool, err := workerpool.New(cfg.Concurrency)
	if err != nil {
		logger.Error("failed to create worker pool", "error", err)
		return 1
	}
	defer pool.Stop()

	checker := httpverifier.NewChecker(httpverifier.Config{
		HTTPURL:            cfg.TestURLHTTP,
		HTTPSURL:           cfg.TestURLHTTPS,
		Timeout:            cfg.ProbeTimeout,
		Protocols:          protocols,
		OpportunisticSOCKS: cfg.OpportunisticSOCKS,
		TLSConfig:          &tls.Config{InsecureSkipVerify: cfg.TLSInsecure},
	}, logger.With("component", "checker"))

	verifyUC := verifier.NewVerifyCandidatesUseCase(checker, pool, logger, cfg.GlobalTimeout)
	scrapeUC := scraper.NewScrapeProxiesUseCase(httpclient.New(), sources, logger)

	writers := []proxy.ResultWriter{
		file.NewWriter(cfg.OutputDir, cfg.ReadmePath, file.RunConfig{
			Concurrency:  cfg.Concurrency,
			MaxPerType:   cfg.MaxPerType,
			TestURLHTTP:  cfg.TestURLHTTP,
			TestURLHTTPS: cfg.TestURLHTTPS,
			TimeoutSec:   int(cfg.ProbeTimeout / time.Second),
		}),
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			return 1
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr)

		streams := queueredis.NewStreamsClient(redisClient).WithMaxLen(100000)
		defer streams.Close()

		writers = append(writers,
			proxyredis.NewRepository(redisClient, cfg.RedisKeyPrefix).WithTTL(cfg.ProxyTTL),
			adapters.NewEventPublisher(streams, cfg.RedisTopic),
		)
	}

	refreshUC := proxy.NewRefreshProxiesUseCase(
		adapters.NewScraperAdapter(scrapeUC),
		verifyUC,
		proxy.RefreshOptions{
			MaxPerProtocol: cfg.MaxPerType,
			HTTPSFallback:  cfg.HTTPSFallback,
		},
		logger,
		writers...,
	)

	logger.Info("starting refresh",
		"sources", len(sources),
		"concurrency", cfg.Concurrency,
		"protocols", protocols.String(),
		"opportunistic_socks", cfg.OpportunisticSOCKS,
	)

	rs, err := refreshUC.Execute(ctx)
	switch {
	case errors.Is(err, proxy.ErrDegradedRun):
		return exitDegraded
	case err != nil:
		logger.Error("refresh failed", "error", err)
		return 1
	}

	logger.Info("refresh finished",
		"http", rs.Summary.HTTP.Working,
		"https", rs.Summary.HTTPS.Working,
		"socks4", rs.Summary.SOCKS4.Working,
		"socks5", rs.Summary.SOCKS5.Working,
		"all", rs.Summary.All.Working,
		"https_fallback", rs.HTTPSFallback,
	)
	return 0
}
