package newsapi

// Response is the envelope of both /top-headlines and /everything
type Response struct {
	Status       string    `json:"status"`
	Code         string    `json:"code,omitempty"`    // Only set when status is "error"
	Message      string    `json:"message,omitempty"` // Only set when status is "error"
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// SourceRef is the publisher the article was syndicated from
type SourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is a single News API article
type Article struct {
	Source      SourceRef `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
	Content     string    `json:"content"`
}
