// Package seed provides helpers to create demo data. These helpers are
// intended for development and testing only.
package seed

import (
	"fmt"
	"strings"

	"reelsocial/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// movieResourceIDs are catalog ids of well-known titles used for movie posts.
var movieResourceIDs = []string{
	"603", "604", "605", "238", "240", "278", "680", "550", "13", "122",
	"155", "157336", "27205", "424", "769", "497", "11216", "129", "389", "372058",
}

// Factory builds post inputs with fake content. A fixed seed yields the
// same sequence of inputs.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a Factory. seed 0 picks a random seed.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// UserIDs returns n distinct fake user ids.
func (f *Factory) UserIDs(n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		id := strings.ToLower(f.faker.Username())
		if seen[id] {
			id = fmt.Sprintf("%s%d", id, len(out))
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// StandardPost builds a standard post input authored by author.
func (f *Factory) StandardPost(author string) service.CreatePostInput {
	in := service.CreatePostInput{
		Title:   strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content: f.faker.Paragraph(1, 3, 8, "\n"),
		Author:  author,
	}
	if f.faker.Bool() {
		in.Hashtag = "#" + strings.ToLower(f.faker.Word())
	}
	if f.faker.Bool() {
		in.BgImg = fmt.Sprintf("https://picsum.photos/seed/%s/1200/600", f.faker.UUID())
	}
	return in
}

// MoviePost builds a movie post input for a well-known title.
func (f *Factory) MoviePost(author string) service.CreateMoviePostInput {
	in := service.CreateMoviePostInput{
		ResourceID: movieResourceIDs[f.faker.IntRange(0, len(movieResourceIDs)-1)],
	}
	if author != "" {
		in.Author = &author
	}
	return in
}

// Pick returns a random element of ids.
func (f *Factory) Pick(ids []string) string {
	return ids[f.faker.IntRange(0, len(ids)-1)]
}

// IntRange returns a random int in [min, max].
func (f *Factory) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return f.faker.IntRange(min, max)
}
