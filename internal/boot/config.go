package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env    string `env:"ENV,default=dev"`
	Server struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
	}
	Database struct {
		Path string `env:"DATABASE_PATH,required"`
	}
	Blob struct {
		Dir     string `env:"BLOB_DIR"`
		BaseURL string `env:"BLOB_BASE_URL"`
	}
	TTS struct {
		APIURL       string `env:"TTS_API_URL,default=https://texttospeech.googleapis.com/v1/text:synthesize"`
		APIKey       string `env:"TTS_API_KEY"`
		VoiceName    string `env:"TTS_VOICE_NAME,default=en-US-Neural2-F"`
		LanguageCode string `env:"TTS_LANGUAGE_CODE,default=en-US"`
	}
	Newsletter struct {
		FunctionURL string `env:"NEWSLETTER_FUNCTION_URL"`
		FunctionKey string `env:"NEWSLETTER_FUNCTION_KEY"`
	}
	Jobs struct {
		CronSecret        string        `env:"CRON_SECRET"`
		QueueBatchSize    int           `env:"QUEUE_BATCH_SIZE,default=10"`
		QueueReclaimAfter time.Duration `env:"QUEUE_RECLAIM_AFTER,default=15m"`
		SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL"`
	}
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

// CachingEnabled reports whether a blob backend is configured at all.
// An unset BLOB_DIR is a soft degradation, not a configuration error.
func (c *Config) CachingEnabled() bool {
	return c.Blob.Dir != ""
}
