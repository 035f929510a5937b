package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelsocial/internal/catalog"
	"reelsocial/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCatalogServer points a mock-backed Server at a fake catalog API.
func newCatalogServer(t *testing.T, handler http.HandlerFunc) *Server {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	cfg := testConfig()
	cfg.TMDBBaseURL = upstream.URL
	cfg.TMDBImageBaseURL = "https://img.test/t/p"
	cfg.TMDBAPIKey = "k3y"
	cfg.TMDBTimeoutSeconds = 2
	srv, _ := newMockServer(t, cfg)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSearchMovies(t *testing.T) {
	var gotQuery, gotPage string
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "k3y", r.URL.Query().Get("api_key"))
		gotQuery = r.URL.Query().Get("query")
		gotPage = r.URL.Query().Get("page")
		writeJSON(w, http.StatusOK, map[string]any{
			"page":          2,
			"total_pages":   5,
			"total_results": 90,
			"results": []map[string]any{
				{"id": 603, "title": "The Matrix", "genre_ids": []int{28, 878, 9999}, "poster_path": "/m.jpg", "vote_average": 8.2},
			},
		})
	})

	resp, body := do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/search?q=matrix&page=2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "matrix", gotQuery)
	assert.Equal(t, "2", gotPage)

	var page moviePageResponse
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.TotalPages)
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(603), page.Results[0].ResourceID)
	assert.Equal(t, []string{"Action", "Science Fiction"}, page.Results[0].GenreNames)
	assert.Equal(t, "https://img.test/t/p/w300/m.jpg", page.Results[0].Poster)
}

func TestSearchMovies_RequiresQuery(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected catalog call %s", r.URL.Path)
	})

	resp, body := do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/search"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, decodeError(t, body).Code)
}

func TestMoviesByTag_InvalidTag(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected catalog call %s", r.URL.Path)
	})

	resp, _ := do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/tag/trending"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMovieDetail(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/603":
			writeJSON(w, http.StatusOK, map[string]any{
				"id":                   603,
				"title":                "The Matrix",
				"genres":               []map[string]any{{"id": 28, "name": "Action"}},
				"poster_path":          "/m.jpg",
				"release_date":         "1999-03-30",
				"vote_average":         8.2,
				"vote_count":           24000,
				"runtime":              136,
				"spoken_languages":     []map[string]any{{"english_name": "English"}},
				"production_countries": []map[string]any{{"name": "United States of America"}},
			})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"status_message": "The resource you requested could not be found."})
		}
	})

	resp, body := do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/603"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail catalog.Detail
	require.NoError(t, json.Unmarshal(body, &detail))
	assert.Equal(t, "30/03/1999", detail.ReleaseDate)
	assert.Equal(t, "2h 16m", detail.Length)
	assert.Equal(t, "https://img.test/t/p/w500/m.jpg", detail.Poster)
	assert.Equal(t, []string{"English"}, detail.Languages)

	resp, body = do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, decodeError(t, body).Code)

	resp, _ = do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMovieCredits(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603/credits", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"id":   603,
			"cast": []map[string]any{{"name": "Keanu Reeves", "profile_path": "/k.jpg"}},
			"crew": []map[string]any{
				{"name": "Lana Wachowski", "job": "Director"},
				{"name": "Lilly Wachowski", "job": "Writer"},
				{"name": "Bill Pope", "job": "Director of Photography"},
			},
		})
	})

	resp, body := do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/603/credits"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var credits catalog.CastAndCrew
	require.NoError(t, json.Unmarshal(body, &credits))
	require.Len(t, credits.MajorCasts, 1)
	assert.Equal(t, "https://img.test/t/p/w185/k.jpg", credits.MajorCasts[0].ProfilePath)
	assert.Equal(t, []string{"Lana Wachowski"}, credits.Directors)
	assert.Equal(t, []string{"Lilly Wachowski"}, credits.Writers)
}

func TestTopRatedMovies(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/top_rated", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"page": 1,
			"results": []map[string]any{
				{"id": 238, "title": "The Godfather", "backdrop_path": "/g.jpg", "vote_average": 8.7},
			},
		})
	})

	resp, body := do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/top-rated"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var featured []catalog.Featured
	require.NoError(t, json.Unmarshal(body, &featured))
	require.Len(t, featured, 1)
	assert.Equal(t, "https://img.test/t/p/original/g.jpg", featured[0].HeroBanner)
}

func TestDiscoverMovies(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "1999", r.URL.Query().Get("year"))
		assert.Equal(t, "878", r.URL.Query().Get("with_genres"))
		writeJSON(w, http.StatusOK, map[string]any{"page": 1, "results": []map[string]any{}})
	})

	resp, body := do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/discover?year=1999&genre=878"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page moviePageResponse
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Empty(t, page.Results)

	resp, _ = do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/discover?year=next"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/discover?sortBy=budget.desc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMovieVideos_UpstreamFailure(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status_message": "Invalid API key"})
	})

	resp, body := do(t, srv, apiRequest{method: http.MethodGet, path: "/api/movies/603/videos"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, models.CodeUpstream, decodeError(t, body).Code)
}
