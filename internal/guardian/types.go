package guardian

// Envelope wraps every Content API response
type Envelope struct {
	Response Response `json:"response"`
}

// Response is the body of a /search call
type Response struct {
	Status      string   `json:"status"`
	Message     string   `json:"message,omitempty"`
	Total       int      `json:"total"`
	CurrentPage int      `json:"currentPage"`
	Pages       int      `json:"pages"`
	Results     []Result `json:"results"`
}

// Result is one content item
type Result struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	SectionID          string `json:"sectionId"`
	SectionName        string `json:"sectionName"`
	WebPublicationDate string `json:"webPublicationDate"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	APIURL             string `json:"apiUrl"`
	PillarName         string `json:"pillarName"`
	Fields             Fields `json:"fields"`
	Tags               []Tag  `json:"tags"`
}

// Fields holds the show-fields projection we request
type Fields struct {
	Headline  string `json:"headline"`
	Byline    string `json:"byline"`
	TrailText string `json:"trailText"` // HTML fragment
	ShortURL  string `json:"shortUrl"`
}

// Tag is a content tag; we request contributor tags only
type Tag struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	WebTitle string `json:"webTitle"`
}
