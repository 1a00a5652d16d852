package httpverifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JulianoL13/proxy-list-refresher/internal/common/logs"
	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
)

const (
	DefaultHTTPURL   = "http://api.ipify.org?format=json"
	DefaultHTTPSURL  = "https://api.ipify.org?format=json"
	DefaultTimeout   = 8 * time.Second
	DefaultUserAgent = "ProxyListRefresher/1.0"
)

type Config struct {
	HTTPURL  string
	HTTPSURL string
	// Timeout bounds each sub-probe on its own.
	Timeout   time.Duration
	Protocols proxy.ProtocolSet
	// OpportunisticSOCKS probes socks4/socks5 on every candidate instead of
	// only those declared as such.
	OpportunisticSOCKS bool
	TLSConfig          *tls.Config
	UserAgent          string
}

type Checker struct {
	cfg    Config
	logger logs.Logger
}

func NewChecker(cfg Config, logger logs.Logger) *Checker {
	if cfg.HTTPURL == "" {
		cfg.HTTPURL = DefaultHTTPURL
	}
	if cfg.HTTPSURL == "" {
		cfg.HTTPSURL = DefaultHTTPSURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Protocols.IsEmpty() {
		cfg.Protocols = proxy.AllProtocols()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Checker{
		cfg:    cfg,
		logger: logger,
	}
}

// Verify runs the enabled sub-probes against c one after another. Every
// sub-probe that runs is recorded as attempted, whether it succeeds or not.
func (ch *Checker) Verify(ctx context.Context, c proxy.Candidate) proxy.Outcome {
	out := proxy.NewOutcome(c)

	for _, p := range ch.probesFor(c) {
		if ctx.Err() != nil {
			out.RecordFailure(p, proxy.KindGlobalBudgetExceeded)
			continue
		}

		latency, err := ch.probe(ctx, p, c)
		if err != nil {
			kind := classify(ctx, err)
			out.RecordFailure(p, kind)
			ch.logger.Debug("probe failed", "address", c.Address(), "protocol", p, "kind", kind, "error", err)
			continue
		}

		out.RecordSuccess(p, latency)
		ch.logger.Debug("probe succeeded", "address", c.Address(), "protocol", p, "latency", latency)
	}

	return out
}

func (ch *Checker) probesFor(c proxy.Candidate) []proxy.Protocol {
	probes := make([]proxy.Protocol, 0, len(proxy.Protocols))
	for _, p := range proxy.Protocols {
		if !ch.cfg.Protocols.Has(p) {
			continue
		}
		if p.IsSOCKS() && !ch.cfg.OpportunisticSOCKS && c.Declared != p {
			continue
		}
		probes = append(probes, p)
	}
	return probes
}

func (ch *Checker) probe(ctx context.Context, p proxy.Protocol, c proxy.Candidate) (time.Duration, error) {
	transport, err := ch.transport(p, c)
	if err != nil {
		return 0, err
	}
	defer transport.CloseIdleConnections()

	client := &http.Client{
		Transport: transport,
		Timeout:   ch.cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	target := ch.cfg.HTTPURL
	if p == proxy.HTTPS {
		target = ch.cfg.HTTPSURL
	}

	reqCtx, cancel := context.WithTimeout(ctx, ch.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", ch.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize+1))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	latency := time.Since(start)

	if err := checkEcho(body); err != nil {
		return 0, err
	}
	return latency, nil
}

func (ch *Checker) transport(p proxy.Protocol, c proxy.Candidate) (*http.Transport, error) {
	t := &http.Transport{
		DisableKeepAlives:     true,
		ForceAttemptHTTP2:     false,
		TLSHandshakeTimeout:   ch.cfg.Timeout,
		ResponseHeaderTimeout: ch.cfg.Timeout,
	}
	if ch.cfg.TLSConfig != nil {
		t.TLSClientConfig = ch.cfg.TLSConfig.Clone()
	}

	switch p {
	case proxy.HTTP, proxy.HTTPS:
		t.Proxy = http.ProxyURL(c.URL(proxy.HTTP))
	case proxy.SOCKS4:
		t.DialContext = socks4Dialer(c.Address(), ch.cfg.Timeout)
	case proxy.SOCKS5:
		dial, err := socks5Dialer(c.Address(), ch.cfg.Timeout)
		if err != nil {
			return nil, err
		}
		t.DialContext = dial
	default:
		return nil, fmt.Errorf("no probe for protocol %q", p)
	}
	return t, nil
}
