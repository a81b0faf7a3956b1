package nyt

import (
	"bytes"
	"encoding/json"
)

// SearchEnvelope is the articlesearch.json response
type SearchEnvelope struct {
	Status   string         `json:"status"`
	Response SearchResponse `json:"response"`
}

type SearchResponse struct {
	Docs []Doc `json:"docs"`
}

// Doc is one article search document
type Doc struct {
	WebURL      string    `json:"web_url"`
	Snippet     string    `json:"snippet"`
	Abstract    string    `json:"abstract"`
	Headline    Headline  `json:"headline"`
	Byline      Byline    `json:"byline"`
	SectionName string    `json:"section_name"`
	Keywords    []Keyword `json:"keywords"`
	PubDate     string    `json:"pub_date"`
}

type Headline struct {
	Main string `json:"main"`
}

type Byline struct {
	Original string `json:"original"`
}

type Keyword struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Rank  int    `json:"rank"`
}

// PopularEnvelope is the mostpopular/v2 response
type PopularEnvelope struct {
	Status     string    `json:"status"`
	NumResults int       `json:"num_results"`
	Results    []Popular `json:"results"`
}

// Popular is one most-viewed article
type Popular struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Byline        string `json:"byline"`
	Abstract      string `json:"abstract"`
	Section       string `json:"section"`
	PublishedDate string `json:"published_date"`
	DesFacet      Facets `json:"des_facet"`
}

// Doc lifts a most-viewed article into the search document shape so a
// single normalizer serves both endpoints
func (p Popular) Doc() Doc {
	keywords := make([]Keyword, 0, len(p.DesFacet))
	for i, f := range p.DesFacet {
		keywords = append(keywords, Keyword{Name: "subject", Value: f, Rank: i + 1})
	}
	return Doc{
		WebURL:      p.URL,
		Abstract:    p.Abstract,
		Headline:    Headline{Main: p.Title},
		Byline:      Byline{Original: p.Byline},
		SectionName: p.Section,
		Keywords:    keywords,
		PubDate:     p.PublishedDate,
	}
}

// Facets decodes a facet list; the API sends "" instead of [] when empty
type Facets []string

func (f *Facets) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = nil
		} else {
			*f = Facets{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*f = list
	return nil
}
