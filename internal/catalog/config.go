// Package catalog talks to the external movie catalog and reshapes its
// records into the projections served by the API.
package catalog

import "time"

// Image widths used by the projections.
const (
	ThumbnailPosterWidth = "w300"
	DetailPosterWidth    = "w500"
	CastProfileWidth     = "w185"
	OriginalWidth        = "original"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	DefaultLanguage     = "en-US"
	defaultTimeout      = 10 * time.Second
)

// Config is built once at startup and handed to NewClient and NewProjector.
type Config struct {
	BaseURL      string
	APIKey       string
	Language     string
	ImageBaseURL string
	Timeout      time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ImageBaseURL == "" {
		c.ImageBaseURL = DefaultImageBaseURL
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}
