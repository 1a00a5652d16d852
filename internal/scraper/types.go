package scraper

// RawLine is one non-comment line of a source list, untouched apart from
// trimming. Type is the protocol the source declares for its entries.
type RawLine struct {
	Text   string
	Type   string
	Source string
}
