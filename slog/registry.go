package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/locrag"
)

// Ensure LoggingRegistry implements locrag.StoreRegistry.
var _ locrag.StoreRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a StoreRegistry and logs changes to the persisted
// store identifier. Failures are logged as warnings since the session keeps
// working in memory.
type LoggingRegistry struct {
	next   locrag.StoreRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next locrag.StoreRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Load delegates to the wrapped registry.
func (r *LoggingRegistry) Load(ctx context.Context) (string, error) {
	id, err := r.next.Load(ctx)
	if err != nil {
		r.logger.Warn("load store", "err", err)
	} else {
		r.logger.Debug("load store", "store", id)
	}
	return id, err
}

// Save delegates to the wrapped registry.
func (r *LoggingRegistry) Save(ctx context.Context, id string) error {
	err := r.next.Save(ctx, id)
	if err != nil {
		r.logger.Warn("save store", "store", id, "err", err)
	} else {
		r.logger.Info("save store", "store", id)
	}
	return err
}

// Clear delegates to the wrapped registry.
func (r *LoggingRegistry) Clear(ctx context.Context) error {
	err := r.next.Clear(ctx)
	if err != nil {
		r.logger.Warn("clear store", "err", err)
	} else {
		r.logger.Info("clear store")
	}
	return err
}
