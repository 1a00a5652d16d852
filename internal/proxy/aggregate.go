package proxy

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

const BucketAll = "all"

// BucketNames lists every output collection in file order.
func BucketNames() []string {
	return []string{string(HTTP), string(HTTPS), string(SOCKS4), string(SOCKS5), BucketAll}
}

// Entry is one working proxy. Protocols holds what was observed, so an entry
// placed in HTTPS by the fallback rule still reports only http.
type Entry struct {
	Candidate Candidate
	Protocols ProtocolSet
	Latency   time.Duration
}

func (e Entry) Address() string {
	return e.Candidate.Address()
}

type Count struct {
	Candidates int `json:"candidates"`
	Working    int `json:"working"`
}

// Summary fields are in key order so encoded summaries are stable.
type Summary struct {
	All    Count `json:"all"`
	HTTP   Count `json:"http"`
	HTTPS  Count `json:"https"`
	SOCKS4 Count `json:"socks4"`
	SOCKS5 Count `json:"socks5"`
}

func (s Summary) Get(bucket string) Count {
	switch bucket {
	case string(HTTP):
		return s.HTTP
	case string(HTTPS):
		return s.HTTPS
	case string(SOCKS4):
		return s.SOCKS4
	case string(SOCKS5):
		return s.SOCKS5
	default:
		return s.All
	}
}

// ResultSet is the output of one validation run. Every slice is sorted by
// host then port and holds each address once.
type ResultSet struct {
	HTTP   []Entry
	HTTPS  []Entry
	SOCKS4 []Entry
	SOCKS5 []Entry
	All    []Entry

	Summary       Summary
	Parsed        int
	Attempted     int
	HTTPSFallback bool
	Degraded      bool
	GeneratedAt   time.Time
}

func (rs ResultSet) Bucket(name string) ([]Entry, bool) {
	switch name {
	case string(HTTP):
		return rs.HTTP, true
	case string(HTTPS):
		return rs.HTTPS, true
	case string(SOCKS4):
		return rs.SOCKS4, true
	case string(SOCKS5):
		return rs.SOCKS5, true
	case BucketAll:
		return rs.All, true
	default:
		return nil, false
	}
}

func (rs ResultSet) Addresses(name string) []string {
	entries, _ := rs.Bucket(name)
	return lo.Map(entries, func(e Entry, _ int) string { return e.Address() })
}

type AggregateOptions struct {
	// HTTPSFallback fills the https bucket from http when no candidate
	// passed the https probe.
	HTTPSFallback bool
}

type merged struct {
	entry     Entry
	attempted ProtocolSet
}

// Aggregate classifies outcomes into buckets. It is pure: the same outcomes
// always give the same ordered result.
func Aggregate(outcomes []Outcome, opts AggregateOptions) ResultSet {
	byAddr := make(map[string]*merged, len(outcomes))
	for _, o := range outcomes {
		key := o.Candidate.Address()
		m, ok := byAddr[key]
		if !ok {
			m = &merged{entry: Entry{Candidate: o.Candidate}}
			byAddr[key] = m
		}
		m.attempted = m.attempted.Union(o.Attempted)
		m.entry.Protocols = m.entry.Protocols.Union(o.Succeeded)
		if l := o.Latency(); l > 0 && (m.entry.Latency == 0 || l < m.entry.Latency) {
			m.entry.Latency = l
		}
	}

	all := lo.Values(byAddr)
	slices.SortFunc(all, func(a, b *merged) int {
		return Compare(a.entry.Candidate, b.entry.Candidate)
	})
	entries := lo.Map(all, func(m *merged, _ int) Entry { return m.entry })

	bucket := func(p Protocol) []Entry {
		return lo.Filter(entries, func(e Entry, _ int) bool { return e.Protocols.Has(p) })
	}

	var rs ResultSet
	rs.Attempted = len(outcomes)
	rs.HTTP = bucket(HTTP)
	rs.HTTPS = bucket(HTTPS)
	rs.SOCKS4 = bucket(SOCKS4)
	rs.SOCKS5 = bucket(SOCKS5)

	if opts.HTTPSFallback && len(rs.HTTPS) == 0 && len(rs.HTTP) > 0 {
		rs.HTTPS = slices.Clone(rs.HTTP)
		rs.HTTPSFallback = true
	}

	union := slices.Concat(rs.HTTP, rs.HTTPS, rs.SOCKS4, rs.SOCKS5)
	rs.All = lo.UniqBy(union, func(e Entry) string { return e.Address() })
	slices.SortFunc(rs.All, func(a, b Entry) int { return Compare(a.Candidate, b.Candidate) })

	attempted := func(p Protocol) int {
		return lo.CountBy(all, func(m *merged) bool { return m.attempted.Has(p) })
	}

	rs.Summary = Summary{
		HTTP:   Count{Candidates: attempted(HTTP), Working: len(rs.HTTP)},
		HTTPS:  Count{Candidates: attempted(HTTPS), Working: len(rs.HTTPS)},
		SOCKS4: Count{Candidates: attempted(SOCKS4), Working: len(rs.SOCKS4)},
		SOCKS5: Count{Candidates: attempted(SOCKS5), Working: len(rs.SOCKS5)},
		All:    Count{Candidates: len(all), Working: len(rs.All)},
	}

	return rs
}
