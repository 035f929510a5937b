package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingID is returned when a catalog record carries no id.
var ErrMissingID = errors.New("catalog record has no id")

const maxMajorCasts = 10

type Summary struct {
	GenreNames  []string `json:"genreNames"`
	ResourceID  int64    `json:"resourceId"`
	Poster      string   `json:"poster"`
	Title       string   `json:"title"`
	VoteAverage float64  `json:"voteAverage"`
}

type Detail struct {
	GenreNames  []string `json:"genreNames"`
	ResourceID  int64    `json:"resourceId"`
	Poster      string   `json:"poster"`
	ReleaseDate string   `json:"releaseDate"`
	Title       string   `json:"title"`
	VoteAverage float64  `json:"voteAverage"`
	VoteCount   int      `json:"voteCount"`
	Length      string   `json:"length"`
	Languages   []string `json:"languages"`
	Overview    string   `json:"overview"`
	Countries   []string `json:"countries"`
}

type CastCredit struct {
	Name        string `json:"name"`
	ProfilePath string `json:"profilePath"`
}

type CastAndCrew struct {
	MajorCasts []CastCredit `json:"majorCasts"`
	Directors  []string     `json:"directors"`
	Writers    []string     `json:"writers"`
}

type Featured struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	HeroBanner  string  `json:"heroBanner"`
	VoteAverage float64 `json:"voteAverage"`
	Overview    string  `json:"overview"`
}

// Projector reshapes raw catalog records. It holds no mutable state and is
// safe for concurrent use.
type Projector struct {
	imageBaseURL string
}

func NewProjector(cfg Config) *Projector {
	cfg = cfg.withDefaults()
	return &Projector{imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/")}
}

// ImageURL joins an image path fragment with a size. An empty path yields "".
func (p *Projector) ImageURL(path, width string) string {
	if path == "" {
		return ""
	}
	if width == "" {
		width = OriginalWidth
	}
	return fmt.Sprintf("%s/%s%s", p.imageBaseURL, width, path)
}

func (p *Projector) ProjectSummary(raw RawMovie) (Summary, error) {
	if raw.ID == 0 {
		return Summary{}, ErrMissingID
	}
	names := make([]string, 0, len(raw.GenreIDs))
	for _, id := range raw.GenreIDs {
		if name, ok := GenreName(id); ok {
			names = append(names, name)
		}
	}
	return Summary{
		GenreNames:  names,
		ResourceID:  raw.ID,
		Poster:      p.ImageURL(raw.PosterPath, ThumbnailPosterWidth),
		Title:       raw.Title,
		VoteAverage: raw.VoteAverage,
	}, nil
}

// ProjectSummaries projects every entry of a listing page.
func (p *Projector) ProjectSummaries(page MoviePage) ([]Summary, error) {
	out := make([]Summary, 0, len(page.Results))
	for i, raw := range page.Results {
		s, err := p.ProjectSummary(raw)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *Projector) ProjectDetail(raw RawMovieDetail) (Detail, error) {
	if raw.ID == 0 {
		return Detail{}, ErrMissingID
	}
	release, err := formatReleaseDate(raw.ReleaseDate)
	if err != nil {
		return Detail{}, err
	}
	length, err := formatRuntime(raw.Runtime)
	if err != nil {
		return Detail{}, err
	}

	genres := make([]string, 0, len(raw.Genres))
	for _, g := range raw.Genres {
		genres = append(genres, g.Name)
	}
	languages := make([]string, 0, len(raw.SpokenLanguages))
	for _, l := range raw.SpokenLanguages {
		languages = append(languages, l.EnglishName)
	}
	countries := make([]string, 0, len(raw.ProductionCountries))
	for _, c := range raw.ProductionCountries {
		countries = append(countries, c.Name)
	}

	return Detail{
		GenreNames:  genres,
		ResourceID:  raw.ID,
		Poster:      p.ImageURL(raw.PosterPath, DetailPosterWidth),
		ReleaseDate: release,
		Title:       raw.Title,
		VoteAverage: raw.VoteAverage,
		VoteCount:   raw.VoteCount,
		Length:      length,
		Languages:   languages,
		Overview:    raw.Overview,
		Countries:   countries,
	}, nil
}

func (p *Projector) ProjectCastAndCrew(raw RawCredits) (CastAndCrew, error) {
	if raw.ID == 0 {
		return CastAndCrew{}, ErrMissingID
	}
	cast := raw.Cast
	if len(cast) > maxMajorCasts {
		cast = cast[:maxMajorCasts]
	}
	out := CastAndCrew{
		MajorCasts: make([]CastCredit, 0, len(cast)),
		Directors:  []string{},
		Writers:    []string{},
	}
	for _, c := range cast {
		out.MajorCasts = append(out.MajorCasts, CastCredit{
			Name:        c.Name,
			ProfilePath: p.ImageURL(c.ProfilePath, CastProfileWidth),
		})
	}
	for _, c := range raw.Crew {
		switch c.Job {
		case "Director":
			out.Directors = append(out.Directors, c.Name)
		case "Writer":
			out.Writers = append(out.Writers, c.Name)
		}
	}
	return out, nil
}

func (p *Projector) ProjectFeatured(raw RawMovie) (Featured, error) {
	if raw.ID == 0 {
		return Featured{}, ErrMissingID
	}
	return Featured{
		ID:          raw.ID,
		Title:       raw.Title,
		HeroBanner:  p.ImageURL(raw.BackdropPath, OriginalWidth),
		VoteAverage: raw.VoteAverage,
		Overview:    raw.Overview,
	}, nil
}

// formatReleaseDate turns "YYYY-MM-DD" into "DD/MM/YYYY". Unreleased titles
// carry an empty date, which stays empty.
func formatReleaseDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid release date %q: %w", s, err)
	}
	return t.Format("02/01/2006"), nil
}

func formatRuntime(minutes int) (string, error) {
	if minutes < 0 {
		return "", fmt.Errorf("invalid runtime %d", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60), nil
}
