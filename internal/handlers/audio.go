package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.pressroom/internal/model"
)

type Narrator interface {
	Narrate(ctx context.Context, text, slug string) (*model.AudioResult, error)
}

type narrateRequest struct {
	Text string `json:"text"`
	Slug string `json:"slug"`
}

// Narrate serves post audio, cache first. The response is either JSON with
// a blob URL or, on the degraded path, the raw MP3 body — never an empty
// success.
func Narrate(narrator Narrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req narrateRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "invalid request body",
			})
		}
		if req.Text == "" || req.Slug == "" {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "text and slug are required",
			})
		}

		result, err := narrator.Narrate(c.Request().Context(), req.Text, req.Slug)
		if err != nil {
			status := http.StatusInternalServerError
			message := err.Error()
			if errors.Is(err, model.ErrorTTSNotConfigured) {
				message = "text-to-speech is not configured"
			}
			return c.JSON(status, map[string]interface{}{
				"error": message,
			})
		}

		if result.URL != "" {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"audioUrl": result.URL,
				"cached":   result.Cached,
			})
		}

		return c.Blob(http.StatusOK, "audio/mpeg", result.Audio)
	}
}
