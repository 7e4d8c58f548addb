package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.pressroom/internal/model"
)

type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (*model.SweepReport, error)
}

type Drainer interface {
	Drain(ctx context.Context, now time.Time) (int, error)
}

type sweepResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Checked   int       `json:"checked"`
	Published int       `json:"published"`
	Failed    int       `json:"failed"`
	Details   struct {
		Published []string             `json:"published"`
		Failed    []model.SweepFailure `json:"failed"`
	} `json:"details"`
}

// PublishScheduled is the cron-triggered sweep over scheduled posts.
func PublishScheduled(sweeper Sweeper) echo.HandlerFunc {
	return func(c echo.Context) error {
		now := time.Now()
		report, err := sweeper.Sweep(c.Request().Context(), now)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
		}

		res := sweepResponse{
			Success:   true,
			Timestamp: now,
			Checked:   report.Checked,
			Published: len(report.Published),
			Failed:    len(report.Failed),
		}
		res.Details.Published = report.Published
		res.Details.Failed = report.Failed

		return c.JSON(http.StatusOK, res)
	}
}

// ProcessEmailQueue is the cron-triggered email queue drain.
func ProcessEmailQueue(drainer Drainer) echo.HandlerFunc {
	return func(c echo.Context) error {
		processed, err := drainer.Drain(c.Request().Context(), time.Now())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": err.Error(),
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":   true,
			"processed": processed,
		})
	}
}
