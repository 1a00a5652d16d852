package adapters

import (
	"context"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
	"github.com/JulianoL13/proxy-list-refresher/internal/scraper"
)

type ScraperAdapter struct {
	usecase *scraper.ScrapeProxiesUseCase
}

func NewScraperAdapter(uc *scraper.ScrapeProxiesUseCase) *ScraperAdapter {
	return &ScraperAdapter{usecase: uc}
}

func (a *ScraperAdapter) Fetch(ctx context.Context) ([]proxy.Line, []error) {
	scraped, errs := a.usecase.Execute(ctx)
	return ToLines(scraped), errs
}

// ToLines tags each raw line with the protocol its source declared. Sources
// typed "mixed" or with an unrecognised type give no hint.
func ToLines(raw []scraper.RawLine) []proxy.Line {
	lines := make([]proxy.Line, len(raw))
	for i, r := range raw {
		hint, ok := proxy.ParseProtocol(r.Type)
		if !ok {
			hint = proxy.Unknown
		}
		lines[i] = proxy.Line{Text: r.Text, Hint: hint}
	}
	return lines
}
