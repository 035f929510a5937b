package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"reelsocial/internal/catalog"
	"reelsocial/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// respondError writes err with the status its AppError code maps to.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

func badRequest(c *fiber.Ctx, message string) error {
	_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(message))
	return errResponseWritten
}

// requireParam returns a non-empty route parameter.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func requireParam(c *fiber.Ctx, param string) (string, error) {
	v := strings.TrimSpace(c.Params(param))
	if v == "" {
		return "", badRequest(c, "Invalid "+humanizeParam(param))
	}
	return v, nil
}

// parseMovieID extracts a positive catalog id from a route parameter.
func parseMovieID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(c, "Invalid "+humanizeParam(param))
	}
	return id, nil
}

// parseDisplayNumber reads the optional displayNumber truncation count. A
// positive maxDisplay caps it.
func parseDisplayNumber(c *fiber.Ctx, maxDisplay int) (*int, error) {
	raw := c.Query("displayNumber")
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, badRequest(c, "displayNumber must be a non-negative integer")
	}
	if maxDisplay > 0 && n > maxDisplay {
		n = maxDisplay
	}
	return &n, nil
}

// parsePage reads the optional 1-based page query parameter.
func parsePage(c *fiber.Ctx) (int, error) {
	raw := c.Query("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, badRequest(c, "page must be a positive integer")
	}
	return page, nil
}

// catalogError maps catalog client and projection failures onto the API
// taxonomy.
func catalogError(err error, movieID any) error {
	var apiErr *catalog.APIError
	switch {
	case errors.Is(err, catalog.ErrInvalidTag):
		return models.NewValidationError(err.Error())
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		return models.NewNotFoundError("Movie", movieID)
	default:
		return models.NewUpstreamError(err)
	}
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post ID", "movieId" -> "movie ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	// Split on camelCase boundary before the trailing "Id" suffix.
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}
