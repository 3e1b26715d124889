package app

import (
	"time"

	"github.com/daydif/daydif-backend/internal/platform/envutil"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type Config struct {
	Port              string
	ContentServiceURL string
	TTSServiceURL     string

	WorkerConcurrency int
	ClaimInterval     time.Duration
	HeartbeatInterval time.Duration
	StaleProcessing   time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.GetEnv("PORT", "8080", log)
	contentURL := envutil.GetEnv("CONTENT_SERVICE_URL", "http://localhost:8001", log)
	ttsURL := envutil.GetEnv("TTS_SERVICE_URL", "http://localhost:8002", log)
	concurrency := envutil.GetEnvAsInt("WORKER_CONCURRENCY", 4, log)
	claimIntervalSeconds := envutil.GetEnvAsInt("WORKER_CLAIM_INTERVAL_SECONDS", 2, log)
	heartbeatSeconds := envutil.GetEnvAsInt("WORKER_HEARTBEAT_SECONDS", 15, log)
	staleSeconds := envutil.GetEnvAsInt("WORKER_STALE_PROCESSING_SECONDS", 300, log)
	return Config{
		Port:              port,
		ContentServiceURL: contentURL,
		TTSServiceURL:     ttsURL,
		WorkerConcurrency: concurrency,
		ClaimInterval:     time.Duration(claimIntervalSeconds) * time.Second,
		HeartbeatInterval: time.Duration(heartbeatSeconds) * time.Second,
		StaleProcessing:   time.Duration(staleSeconds) * time.Second,
	}
}
