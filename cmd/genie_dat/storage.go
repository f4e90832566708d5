package main

import (
	"fmt"

	"github.com/genietools/genie-dat/internal/config"
	"github.com/genietools/genie-dat/internal/storage"
)

// openBackend creates and initializes the configured storage backend.
func (s *session) openBackend() (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()

	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		Logger:   s.logger,
		DBLogger: s.pipelineLog,
		DB:       config.GetDBConfig(),
	})
	if err != nil {
		s.logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		s.logger.Error("Failed to initialize storage backend", "type", storageCfg.Type, "error", err)
		return nil, fmt.Errorf("initializing %s storage: %w", storageCfg.Type, err)
	}

	s.logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return backend, nil
}
