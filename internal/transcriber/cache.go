package transcriber

import (
	"context"
	"fmt"
	"log/slog"

	"mediascribe/internal/logging"
)

// Cache owns at most one loaded Engine and reuses it while the requested
// model size is unchanged. Loading is expensive, so a batch of jobs sharing
// one size pays it once; asking for a different size closes the old model
// first, bounding memory to a single loaded model.
type Cache struct {
	manager *Manager
	binPath string
	logger  *slog.Logger
	factory func(engineOptions) (Engine, error)

	size   string
	engine Engine
}

// NewCache creates a Cache backed by manager. binPath names the whisper-cli
// binary used by subprocess builds; cgo builds ignore it.
func NewCache(manager *Manager, binPath string, logger *slog.Logger) *Cache {
	return &Cache{
		manager: manager,
		binPath: binPath,
		logger:  logging.WithComponent(logger, "transcriber"),
		factory: newEngine,
	}
}

// newCacheWithFactory is the test constructor; it swaps the engine factory
// for a fake so no model is ever loaded.
func newCacheWithFactory(manager *Manager, factory func(engineOptions) (Engine, error)) *Cache {
	c := NewCache(manager, "", nil)
	c.factory = factory
	return c
}

// Engine returns a loaded engine for the given model size, downloading the
// model first when missing and reusing the previous engine when the size is
// unchanged.
func (c *Cache) Engine(ctx context.Context, size string) (Engine, error) {
	if c.engine != nil && c.size == size {
		return c.engine, nil
	}
	if err := c.Close(); err != nil {
		c.logger.Warn("closing previous model", logging.Error(err))
	}

	modelPath, err := c.manager.Ensure(ctx, size, nil)
	if err != nil {
		return nil, err
	}

	c.logger.Info("loading model", logging.String("model", size))
	engine, err := c.factory(engineOptions{ModelPath: modelPath, BinPath: c.binPath})
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", size, err)
	}
	c.size = size
	c.engine = engine
	return engine, nil
}

// Close releases the cached engine, if any.
func (c *Cache) Close() error {
	if c.engine == nil {
		return nil
	}
	err := c.engine.Close()
	c.engine = nil
	c.size = ""
	return err
}
