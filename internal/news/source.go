package news

// Source identifies the provider that produced an article.
// The string values are surfaced to callers verbatim.
type Source string

const (
	SourceNewsAPI  Source = "News API"
	SourceGuardian Source = "The Guardian"
	SourceNYT      Source = "New York Times API"
)

// Sources returns every known source in merge order
func Sources() []Source {
	return []Source{SourceNewsAPI, SourceGuardian, SourceNYT}
}

// Rank is the position of the source in the fixed merge order.
// Unknown sources sort last.
func (s Source) Rank() int {
	for i, known := range Sources() {
		if s == known {
			return i
		}
	}
	return len(Sources())
}

// Valid reports whether s is one of the known sources
func (s Source) Valid() bool {
	return s.Rank() < len(Sources())
}

func (s Source) String() string {
	return string(s)
}
