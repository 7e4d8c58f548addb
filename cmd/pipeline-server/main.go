package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"uk.co.dudmesh.pressroom/internal/boot"
	"uk.co.dudmesh.pressroom/internal/handlers"
	"uk.co.dudmesh.pressroom/internal/scheduler"
	"uk.co.dudmesh.pressroom/internal/service/audio"
	"uk.co.dudmesh.pressroom/internal/service/mailqueue"
	"uk.co.dudmesh.pressroom/internal/service/publisher"
	"uk.co.dudmesh.pressroom/internal/store"
	"uk.co.dudmesh.pressroom/pkg/newsletter"
	"uk.co.dudmesh.pressroom/pkg/tts"
)

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	contentStore, err := store.NewContentStore(config.Database.Path)
	if err != nil {
		log.Fatalf("opening content store: %+v", err)
	}
	defer contentStore.Close()

	var blobStore audio.Cache
	if config.CachingEnabled() {
		bs, err := store.NewBlobStore(config.Blob.Dir, config.Blob.BaseURL)
		if err != nil {
			log.Fatalf("opening blob store: %+v", err)
		}
		blobStore = bs
	} else {
		log.Warn("blob store not configured, audio caching disabled")
	}

	ttsClient := tts.New(config.TTS.APIURL, config.TTS.APIKey, config.TTS.VoiceName, config.TTS.LanguageCode)
	sender := newsletter.New(config.Newsletter.FunctionURL, config.Newsletter.FunctionKey)

	sweeper := publisher.New(contentStore)
	drainer := mailqueue.New(contentStore, sender, config.Jobs.QueueBatchSize, config.Jobs.QueueReclaimAfter)
	narrator := audio.New(blobStore, ttsClient)

	server := echo.New()
	server.HideBanner = true
	server.Use(middleware.BodyLimit("1M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("pressroom"))
	server.Use(middleware.Recover())

	server.Logger.SetLevel(log.INFO)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	jobs := server.Group("/api/jobs", handlers.CronAuth(config.Jobs.CronSecret))
	jobs.POST("/publish-scheduled", handlers.PublishScheduled(sweeper))
	jobs.POST("/process-email-queue", handlers.ProcessEmailQueue(drainer))

	server.POST("/api/audio", handlers.Narrate(narrator))

	if config.Jobs.SchedulerInterval > 0 {
		ticker := scheduler.New(config.Jobs.SchedulerInterval,
			scheduler.Job{Name: "publish-scheduled", Run: func(ctx context.Context, now time.Time) error {
				_, err := sweeper.Sweep(ctx, now)
				return err
			}},
			scheduler.Job{Name: "process-email-queue", Run: func(ctx context.Context, now time.Time) error {
				_, err := drainer.Drain(ctx, now)
				return err
			}},
		)
		stop := ticker.Start()
		defer stop()
	}

	go func() {
		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
