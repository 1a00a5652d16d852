package scraper

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// TypeMixed marks a source whose lines carry no single protocol.
const TypeMixed = "mixed"

type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Type string `yaml:"type"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

func PublicSources() []Source {
	return []Source{
		// 1. TheSpeedX
		{Name: "TheSpeedX-HTTP", URL: "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/http.txt", Type: "http"},
		{Name: "TheSpeedX-SOCKS4", URL: "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/socks4.txt", Type: "socks4"},
		{Name: "TheSpeedX-SOCKS5", URL: "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/socks5.txt", Type: "socks5"},

		// 2. Monosans
		{Name: "Monosans-HTTP", URL: "https://raw.githubusercontent.com/monosans/proxy-list/main/proxies/http.txt", Type: "http"},
		{Name: "Monosans-SOCKS4", URL: "https://raw.githubusercontent.com/monosans/proxy-list/main/proxies/socks4.txt", Type: "socks4"},
		{Name: "Monosans-SOCKS5", URL: "https://raw.githubusercontent.com/monosans/proxy-list/main/proxies/socks5.txt", Type: "socks5"},

		// 3. ShiftyTR
		{Name: "ShiftyTR-HTTP", URL: "https://raw.githubusercontent.com/ShiftyTR/Proxy-List/master/http.txt", Type: "http"},
		{Name: "ShiftyTR-HTTPS", URL: "https://raw.githubusercontent.com/ShiftyTR/Proxy-List/master/https.txt", Type: "https"},
		{Name: "ShiftyTR-SOCKS5", URL: "https://raw.githubusercontent.com/ShiftyTR/Proxy-List/master/socks5.txt", Type: "socks5"},

		// 4. Hookzof
		{Name: "Hookzof-SOCKS5", URL: "https://raw.githubusercontent.com/hookzof/socks5_list/master/proxy.txt", Type: "socks5"},
	}
}

// LoadSources reads a source list from path. Files ending in .yaml or .yml
// hold a `sources:` list; anything else uses one `url [type]` per line.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourcesFile, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseSourcesYAML(f)
	default:
		return ParseSourcesText(f)
	}
}

func ParseSourcesYAML(r io.Reader) ([]Source, error) {
	var file sourcesFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourcesFile, err)
	}

	sources := make([]Source, 0, len(file.Sources))
	for i, s := range file.Sources {
		if strings.TrimSpace(s.URL) == "" {
			return nil, fmt.Errorf("%w: entry %d has no url", ErrInvalidSourcesFile, i)
		}
		sources = append(sources, withDefaults(s))
	}
	return sources, nil
}

// ParseSourcesText parses `url [type]` lines. Blank lines and # comments are
// skipped; a missing type means mixed.
func ParseSourcesText(r io.Reader) ([]Source, error) {
	var sources []Source
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		s := Source{URL: fields[0]}
		if len(fields) > 1 {
			s.Type = fields[1]
		}
		sources = append(sources, withDefaults(s))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourcesFile, err)
	}
	return sources, nil
}

func withDefaults(s Source) Source {
	s.URL = strings.TrimSpace(s.URL)
	s.Type = strings.ToLower(strings.TrimSpace(s.Type))
	s.Type = lo.Ternary(s.Type == "", TypeMixed, s.Type)
	if s.Name == "" {
		s.Name = s.URL
	}
	return s
}
