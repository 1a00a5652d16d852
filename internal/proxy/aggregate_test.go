package proxy_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcome(addr string, attempted, succeeded []proxy.Protocol) proxy.Outcome {
	c, err := proxy.ParseLine(addr, proxy.Unknown)
	if err != nil {
		panic(err)
	}
	o := proxy.NewOutcome(c)
	ok := proxy.NewProtocolSet(succeeded...)
	for i, p := range attempted {
		if ok.Has(p) {
			o.RecordSuccess(p, time.Duration(i+1)*100*time.Millisecond)
		} else {
			o.RecordFailure(p, proxy.KindTimeout)
		}
	}
	return o
}

var (
	forward  = []proxy.Protocol{proxy.HTTP, proxy.HTTPS}
	onlyHTTP = []proxy.Protocol{proxy.HTTP}
	both     = []proxy.Protocol{proxy.HTTP, proxy.HTTPS}
)

func TestAggregate_Buckets(t *testing.T) {
	outcomes := []proxy.Outcome{
		outcome("9.9.9.9:80", forward, onlyHTTP),
		outcome("1.1.1.1:8080", forward, both),
		outcome("5.5.5.5:1080", []proxy.Protocol{proxy.HTTP, proxy.HTTPS, proxy.SOCKS5}, []proxy.Protocol{proxy.SOCKS5}),
		outcome("4.4.4.4:1080", []proxy.Protocol{proxy.HTTP, proxy.HTTPS, proxy.SOCKS4}, []proxy.Protocol{proxy.SOCKS4}),
		outcome("7.7.7.7:3128", forward, nil),
	}

	rs := proxy.Aggregate(outcomes, proxy.AggregateOptions{HTTPSFallback: true})

	assert.Equal(t, []string{"1.1.1.1:8080", "9.9.9.9:80"}, rs.Addresses("http"))
	assert.Equal(t, []string{"1.1.1.1:8080"}, rs.Addresses("https"))
	assert.Equal(t, []string{"4.4.4.4:1080"}, rs.Addresses("socks4"))
	assert.Equal(t, []string{"5.5.5.5:1080"}, rs.Addresses("socks5"))
	assert.Equal(t, []string{"1.1.1.1:8080", "4.4.4.4:1080", "5.5.5.5:1080", "9.9.9.9:80"}, rs.Addresses("all"))
	assert.False(t, rs.HTTPSFallback)

	assert.Equal(t, proxy.Count{Candidates: 5, Working: 2}, rs.Summary.HTTP)
	assert.Equal(t, proxy.Count{Candidates: 5, Working: 1}, rs.Summary.HTTPS)
	assert.Equal(t, proxy.Count{Candidates: 1, Working: 1}, rs.Summary.SOCKS4)
	assert.Equal(t, proxy.Count{Candidates: 1, Working: 1}, rs.Summary.SOCKS5)
	assert.Equal(t, proxy.Count{Candidates: 5, Working: 4}, rs.Summary.All)
	assert.Equal(t, 5, rs.Attempted)
}

func TestAggregate_HTTPOnlyCandidateStaysOutOfHTTPS(t *testing.T) {
	outcomes := []proxy.Outcome{
		outcome("1.1.1.1:8080", forward, onlyHTTP),
		outcome("2.2.2.2:8080", forward, both),
	}

	rs := proxy.Aggregate(outcomes, proxy.AggregateOptions{HTTPSFallback: true})

	assert.Contains(t, rs.Addresses("http"), "1.1.1.1:8080")
	assert.NotContains(t, rs.Addresses("https"), "1.1.1.1:8080")
	assert.False(t, rs.HTTPSFallback)
}

func TestAggregate_HTTPSFallback(t *testing.T) {
	outcomes := []proxy.Outcome{
		outcome("2.2.2.2:80", forward, onlyHTTP),
		outcome("1.1.1.1:80", forward, onlyHTTP),
		outcome("3.3.3.3:1080", []proxy.Protocol{proxy.SOCKS5}, []proxy.Protocol{proxy.SOCKS5}),
	}

	t.Run("https mirrors http when nothing passed https", func(t *testing.T) {
		rs := proxy.Aggregate(outcomes, proxy.AggregateOptions{HTTPSFallback: true})

		assert.True(t, rs.HTTPSFallback)
		assert.Equal(t, rs.Addresses("http"), rs.Addresses("https"))
		assert.Equal(t, 2, rs.Summary.HTTPS.Working)
		for _, e := range rs.HTTPS {
			assert.False(t, e.Protocols.Has(proxy.HTTPS), "fallback entries keep observed protocols")
		}
	})

	t.Run("disabled fallback leaves https empty", func(t *testing.T) {
		rs := proxy.Aggregate(outcomes, proxy.AggregateOptions{})

		assert.False(t, rs.HTTPSFallback)
		assert.Empty(t, rs.HTTPS)
	})

	t.Run("never applied when one https success exists", func(t *testing.T) {
		withHTTPS := append([]proxy.Outcome{outcome("8.8.8.8:443", forward, []proxy.Protocol{proxy.HTTPS})}, outcomes...)

		rs := proxy.Aggregate(withHTTPS, proxy.AggregateOptions{HTTPSFallback: true})

		assert.False(t, rs.HTTPSFallback)
		assert.Equal(t, []string{"8.8.8.8:443"}, rs.Addresses("https"))
	})

	t.Run("no fallback from empty http", func(t *testing.T) {
		rs := proxy.Aggregate([]proxy.Outcome{outcome("1.1.1.1:80", forward, nil)}, proxy.AggregateOptions{HTTPSFallback: true})

		assert.False(t, rs.HTTPSFallback)
		assert.Empty(t, rs.HTTPS)
	})
}

func TestAggregate_AllHasNoDuplicates(t *testing.T) {
	outcomes := []proxy.Outcome{
		outcome("1.1.1.1:80", proxy.Protocols, proxy.Protocols),
		outcome("1.1.1.1:81", proxy.Protocols, []proxy.Protocol{proxy.SOCKS4, proxy.SOCKS5}),
		outcome("1.1.1.1:80", forward, onlyHTTP),
	}

	rs := proxy.Aggregate(outcomes, proxy.AggregateOptions{HTTPSFallback: true})

	seen := map[string]bool{}
	for _, e := range rs.All {
		assert.False(t, seen[e.Address()], "duplicate %s", e.Address())
		seen[e.Address()] = true
	}
	assert.Len(t, rs.All, 2)
	assert.Equal(t, 2, rs.Summary.All.Candidates)
}

func TestAggregate_SortOrder(t *testing.T) {
	outcomes := []proxy.Outcome{
		outcome("b.example.com:80", forward, onlyHTTP),
		outcome("10.0.0.1:9000", forward, onlyHTTP),
		outcome("10.0.0.1:800", forward, onlyHTTP),
		outcome("9.0.0.1:80", forward, onlyHTTP),
	}

	rs := proxy.Aggregate(outcomes, proxy.AggregateOptions{})

	assert.Equal(t, []string{"10.0.0.1:800", "10.0.0.1:9000", "9.0.0.1:80", "b.example.com:80"}, rs.Addresses("http"))
}

func TestAggregate_Idempotent(t *testing.T) {
	outcomes := []proxy.Outcome{
		outcome("3.3.3.3:80", forward, both),
		outcome("1.1.1.1:80", forward, onlyHTTP),
		outcome("2.2.2.2:1080", []proxy.Protocol{proxy.SOCKS5}, []proxy.Protocol{proxy.SOCKS5}),
	}
	reversed := []proxy.Outcome{outcomes[2], outcomes[1], outcomes[0]}

	first, err := json.Marshal(proxy.Aggregate(outcomes, proxy.AggregateOptions{HTTPSFallback: true}))
	require.NoError(t, err)
	second, err := json.Marshal(proxy.Aggregate(outcomes, proxy.AggregateOptions{HTTPSFallback: true}))
	require.NoError(t, err)
	third, err := json.Marshal(proxy.Aggregate(reversed, proxy.AggregateOptions{HTTPSFallback: true}))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, string(first), string(third))
}

func TestAggregate_Empty(t *testing.T) {
	rs := proxy.Aggregate(nil, proxy.AggregateOptions{HTTPSFallback: true})

	assert.Empty(t, rs.All)
	assert.False(t, rs.HTTPSFallback)
	assert.Equal(t, proxy.Summary{}, rs.Summary)
	assert.Zero(t, rs.Attempted)
}

func TestOutcome(t *testing.T) {
	c := proxy.NewCandidate("1.2.3.4", 8080, proxy.Unknown)
	o := proxy.NewOutcome(c)

	_, ok := o.ErrorKind()
	assert.False(t, ok)

	o.RecordFailure(proxy.HTTPS, proxy.KindTLS)
	o.RecordSuccess(proxy.HTTP, 300*time.Millisecond)
	o.RecordSuccess(proxy.SOCKS5, 100*time.Millisecond)

	kind, ok := o.ErrorKind()
	assert.True(t, ok)
	assert.Equal(t, proxy.KindTLS, kind)
	assert.Equal(t, 100*time.Millisecond, o.Latency())
	assert.Equal(t, proxy.NewProtocolSet(proxy.HTTP, proxy.HTTPS, proxy.SOCKS5), o.Attempted)
	assert.False(t, o.Cancelled())

	o.RecordFailure(proxy.SOCKS4, proxy.KindGlobalBudgetExceeded)
	assert.True(t, o.Cancelled())
}
