package server

import (
	"strconv"

	"reelsocial/internal/catalog"
	"reelsocial/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type moviePageResponse struct {
	Page         int               `json:"page"`
	TotalPages   int               `json:"totalPages"`
	TotalResults int               `json:"totalResults"`
	Results      []catalog.Summary `json:"results"`
}

func (s *Server) summaryPage(c *fiber.Ctx, page *catalog.MoviePage) error {
	results, err := s.projector.ProjectSummaries(*page)
	if err != nil {
		return respondError(c, catalogError(err, nil))
	}
	return c.JSON(moviePageResponse{
		Page:         page.Page,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
		Results:      results,
	})
}

// SearchMovies handles GET /api/movies/search
// @Summary Search movies
// @Tags movies
// @Produce json
// @Param q query string true "Title to search for"
// @Param page query int false "Page number"
// @Success 200 {object} moviePageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /movies/search [get]
func (s *Server) SearchMovies(c *fiber.Ctx) error {
	ctx := c.UserContext()
	query, err := validation.ValidateSearchQuery(c.Query("q"))
	if err != nil {
		_ = badRequest(c, err.Error())
		return nil
	}
	page, err := parsePage(c)
	if err != nil {
		return nil
	}

	result, err := s.catalog.SearchMovies(ctx, query, page)
	if err != nil {
		return respondError(c, catalogError(err, nil))
	}
	return s.summaryPage(c, result)
}

// MoviesByTag handles GET /api/movies/tag/:tag
// @Summary Movies by tag
// @Tags movies
// @Produce json
// @Param tag path string true "popular, now_playing, upcoming or top_rated"
// @Param page query int false "Page number"
// @Success 200 {object} moviePageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /movies/tag/{tag} [get]
func (s *Server) MoviesByTag(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page, err := parsePage(c)
	if err != nil {
		return nil
	}

	result, err := s.catalog.MoviesByTag(ctx, c.Params("tag"), page)
	if err != nil {
		return respondError(c, catalogError(err, nil))
	}
	return s.summaryPage(c, result)
}

// TopRatedMovies handles GET /api/movies/top-rated
// @Summary Featured top rated movies
// @Tags movies
// @Produce json
// @Success 200 {array} catalog.Featured
// @Failure 502 {object} models.ErrorResponse
// @Router /movies/top-rated [get]
func (s *Server) TopRatedMovies(c *fiber.Ctx) error {
	ctx := c.UserContext()
	result, err := s.catalog.TopRated(ctx)
	if err != nil {
		return respondError(c, catalogError(err, nil))
	}

	featured := make([]catalog.Featured, 0, len(result.Results))
	for _, raw := range result.Results {
		f, err := s.projector.ProjectFeatured(raw)
		if err != nil {
			return respondError(c, catalogError(err, raw.ID))
		}
		featured = append(featured, f)
	}
	return c.JSON(featured)
}

// DiscoverMovies handles GET /api/movies/discover
// @Summary Discover movies
// @Tags movies
// @Produce json
// @Param year query int false "Primary release year"
// @Param genre query string false "Genre id filter"
// @Param sortBy query string false "Catalog sort order, e.g. popularity.desc"
// @Param page query int false "Page number"
// @Success 200 {object} moviePageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /movies/discover [get]
func (s *Server) DiscoverMovies(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page, err := parsePage(c)
	if err != nil {
		return nil
	}

	if err := validation.ValidateDiscoverSort(c.Query("sortBy")); err != nil {
		_ = badRequest(c, err.Error())
		return nil
	}

	dq := catalog.DiscoverQuery{
		Genre:  c.Query("genre"),
		SortBy: c.Query("sortBy"),
		Page:   page,
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			_ = badRequest(c, "year must be a positive integer")
			return nil
		}
		dq.Year = year
	}

	result, err := s.catalog.Discover(ctx, dq)
	if err != nil {
		return respondError(c, catalogError(err, nil))
	}
	return s.summaryPage(c, result)
}

// MovieDetail handles GET /api/movies/:movieId
// @Summary Movie detail
// @Tags movies
// @Produce json
// @Param movieId path int true "Catalog movie ID"
// @Success 200 {object} catalog.Detail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /movies/{movieId} [get]
func (s *Server) MovieDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := parseMovieID(c, "movieId")
	if err != nil {
		return nil
	}

	raw, err := s.catalog.Movie(ctx, id)
	if err != nil {
		return respondError(c, catalogError(err, id))
	}
	detail, err := s.projector.ProjectDetail(*raw)
	if err != nil {
		return respondError(c, catalogError(err, id))
	}
	return c.JSON(detail)
}

// MovieCredits handles GET /api/movies/:movieId/credits
// @Summary Movie cast and crew
// @Tags movies
// @Produce json
// @Param movieId path int true "Catalog movie ID"
// @Success 200 {object} catalog.CastAndCrew
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /movies/{movieId}/credits [get]
func (s *Server) MovieCredits(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := parseMovieID(c, "movieId")
	if err != nil {
		return nil
	}

	raw, err := s.catalog.Credits(ctx, id)
	if err != nil {
		return respondError(c, catalogError(err, id))
	}
	credits, err := s.projector.ProjectCastAndCrew(*raw)
	if err != nil {
		return respondError(c, catalogError(err, id))
	}
	return c.JSON(credits)
}

// MovieVideos handles GET /api/movies/:movieId/videos
// @Summary Movie videos
// @Tags movies
// @Produce json
// @Param movieId path int true "Catalog movie ID"
// @Success 200 {array} catalog.Video
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /movies/{movieId}/videos [get]
func (s *Server) MovieVideos(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := parseMovieID(c, "movieId")
	if err != nil {
		return nil
	}

	raw, err := s.catalog.Videos(ctx, id)
	if err != nil {
		return respondError(c, catalogError(err, id))
	}
	videos := raw.Results
	if videos == nil {
		videos = []catalog.Video{}
	}
	return c.JSON(videos)
}
