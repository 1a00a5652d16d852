package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
)

const (
	statsStart = "<!-- STATS:START -->"
	statsEnd   = "<!-- STATS:END -->"

	// Python-style isoformat, which existing consumers of summary.json parse.
	timestampLayout = "2006-01-02T15:04:05-07:00"
)

// RunConfig is echoed into summary.json so readers know how a list was made.
type RunConfig struct {
	Concurrency  int    `json:"concurrency"`
	MaxPerType   int    `json:"max_per_type"`
	TestURLHTTP  string `json:"test_url_http"`
	TestURLHTTPS string `json:"test_url_https"`
	TimeoutSec   int    `json:"timeout_sec"`
}

// Fields are declared in key order so the output matches a sorted dump.
type summaryFile struct {
	Config        RunConfig     `json:"config"`
	Counts        proxy.Summary `json:"counts"`
	HTTPSFallback bool          `json:"https_fallback"`
	Parsed        int           `json:"parsed"`
	UpdatedUTC    string        `json:"updated_utc"`
}

type Writer struct {
	dir        string
	readmePath string
	config     RunConfig
}

// NewWriter writes lists into dir. An empty readmePath skips the README
// stats block.
func NewWriter(dir, readmePath string, config RunConfig) *Writer {
	return &Writer{
		dir:        dir,
		readmePath: readmePath,
		config:     config,
	}
}

func (w *Writer) Write(ctx context.Context, rs proxy.ResultSet) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, name := range proxy.BucketNames() {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(w.dir, name+".txt")
		if err := writeAtomic(path, listContent(rs.Addresses(name))); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	summary := summaryFile{
		Config:        w.config,
		Counts:        rs.Summary,
		HTTPSFallback: rs.HTTPSFallback,
		Parsed:        rs.Parsed,
		UpdatedUTC:    rs.GeneratedAt.UTC().Truncate(time.Second).Format(timestampLayout),
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := writeAtomic(filepath.Join(w.dir, "summary.json"), data); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if w.readmePath == "" {
		return nil
	}
	if err := updateReadme(w.readmePath, summary); err != nil {
		return fmt.Errorf("update readme: %w", err)
	}
	return nil
}

func listContent(addresses []string) []byte {
	if len(addresses) == 0 {
		return nil
	}
	return []byte(strings.Join(addresses, "\n") + "\n")
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// updateReadme replaces the text between the stats markers. A missing file
// or missing markers leave the README untouched.
func updateReadme(path string, s summaryFile) error {
	text, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	pre, rest, ok := bytes.Cut(text, []byte(statsStart))
	if !ok {
		return nil
	}
	_, post, ok := bytes.Cut(rest, []byte(statsEnd))
	if !ok {
		return nil
	}

	var b bytes.Buffer
	b.Write(pre)
	b.WriteString(statsBlock(s))
	b.Write(post)

	return writeAtomic(path, b.Bytes())
}

func statsBlock(s summaryFile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", statsStart)
	fmt.Fprintf(&b, "Last update (UTC): **%s**\n\n", s.UpdatedUTC)
	b.WriteString("| Type | Working | Total Candidates |\n")
	b.WriteString("|---|---:|---:|\n")
	rows := []struct {
		label string
		count proxy.Count
	}{
		{"HTTP", s.Counts.HTTP},
		{"HTTPS", s.Counts.HTTPS},
		{"SOCKS4", s.Counts.SOCKS4},
		{"SOCKS5", s.Counts.SOCKS5},
		{"ALL", s.Counts.All},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", r.label, r.count.Working, r.count.Candidates)
	}
	b.WriteString(statsEnd)
	return b.String()
}

var _ proxy.ResultWriter = (*Writer)(nil)
