package app

import (
	"github.com/daydif/daydif-backend/internal/clients/content"
	"github.com/daydif/daydif-backend/internal/clients/tts"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type Clients struct {
	Content content.Client
	TTS     tts.Client
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring upstream clients...")
	contentClient, err := content.NewClient(cfg.ContentServiceURL, log)
	if err != nil {
		return Clients{}, err
	}
	ttsClient, err := tts.NewClient(cfg.TTSServiceURL, log)
	if err != nil {
		return Clients{}, err
	}
	return Clients{Content: contentClient, TTS: ttsClient}, nil
}
