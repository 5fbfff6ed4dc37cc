// Package backend builds the configured remote sync adapter.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ridelog/internal/sync"
	gsheet "ridelog/internal/sync/google"
	"ridelog/internal/sync/memory"
	"ridelog/internal/sync/webapp"
)

// Factory creates sync backends from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateBackend selects and initializes the remote adapter.
func (f *Factory) CreateBackend(ctx context.Context, config Config) (sync.Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case WebAppBackend:
		cli, err := webapp.New(config.EndpointURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize web app client: %w", err)
		}
		f.logger.Info("Initialized web app sync backend")
		return cli, nil

	case SheetsBackend:
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets sync backend")
		return cli, nil

	case MemoryBackend:
		f.logger.Info("Initialized in-memory sync backend")
		return memory.New(nil), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
