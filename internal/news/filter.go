package news

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// DateLayout is the inbound format of the from/to filter fields
const DateLayout = "2006-01-02"

// Filter is the inbound search request. Every field except Search is optional.
type Filter struct {
	Search   string     `json:"search" validate:"required"`
	Category string     `json:"category,omitempty"`
	Source   Source     `json:"source,omitempty" validate:"omitempty,oneof='News API' 'The Guardian' 'New York Times API'"`
	Tags     []string   `json:"tags,omitempty" validate:"omitempty,dive,required"`
	Author   string     `json:"author,omitempty"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
	Page     int        `json:"page,omitempty"`
	PerPage  int        `json:"per_page,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so errors match the request parameters
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the normalized filter against the allowed values, so a
// blank search is rejected. Paging never fails validation; Normalized clamps it.
// The returned error is a *ValidationError wrapping ErrInvalidFilter.
func (f Filter) Validate() error {
	f = f.Normalized()
	err := validate.Struct(f)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return invalid("filter", err.Error())
		}
		out := &ValidationError{}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
		}
		return out
	}

	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return invalid("to", "must not be before from")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(sourceNames(), ", ")
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func sourceNames() []string {
	names := make([]string, 0, len(Sources()))
	for _, s := range Sources() {
		names = append(names, s.String())
	}
	return names
}

// Normalized trims free-text fields, drops empty tags and clamps paging
func (f Filter) Normalized() Filter {
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	f.Author = strings.TrimSpace(f.Author)
	f.Source = Source(strings.TrimSpace(string(f.Source)))

	tags := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	f.Tags = tags

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

// StartBound is the inclusive lower bound: start of the From day in UTC
func (f Filter) StartBound() *time.Time {
	if f.From == nil {
		return nil
	}
	t := startOfDay(*f.From)
	return &t
}

// EndBound is the exclusive upper bound: start of the day after To in UTC
func (f Filter) EndBound() *time.Time {
	if f.To == nil {
		return nil
	}
	t := startOfDay(*f.To).AddDate(0, 0, 1)
	return &t
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Matches applies the store predicate to a single article: every set field
// must match, and at least one of Tags must be present when Tags is set.
func (f Filter) Matches(a Article) bool {
	if f.Search != "" && !containsFold(a.Title, f.Search) {
		return false
	}
	if f.Author != "" && !containsFold(a.Author, f.Author) {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.Source != "" && a.Source != f.Source {
		return false
	}
	if from := f.StartBound(); from != nil && a.PublishedAt.Before(*from) {
		return false
	}
	if to := f.EndBound(); to != nil && !a.PublishedAt.Before(*to) {
		return false
	}
	if len(f.Tags) > 0 {
		for _, tag := range f.Tags {
			if a.HasTag(tag) {
				return true
			}
		}
		return false
	}
	return true
}

// MatchesAuthor is the case-insensitive author substring check used after a live merge
func (f Filter) MatchesAuthor(a Article) bool {
	return f.Author == "" || containsFold(a.Author, f.Author)
}

// ParseDate parses a from/to request value. Both the plain date layout and
// RFC 3339 are accepted; anything else is an invalid filter.
func ParseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, invalid(field, "must be a date (YYYY-MM-DD)")
}

// SplitTags splits the comma separated tags parameter
func SplitTags(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(value, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
