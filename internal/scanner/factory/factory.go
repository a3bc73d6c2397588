package factory

import (
	"fmt"

	"github.com/varalys/asmscan/internal/config"
	"github.com/varalys/asmscan/internal/scanner"
	"github.com/varalys/asmscan/internal/scanner/engine"
)

// Config is the subset of configuration needed to create a scanner.
type Config struct {
	Engine config.EngineConfig
}

// New creates a new scanner instance based on the configuration.
// Currently, it always returns the external engine scanner.
func New(cfg Config) (scanner.Scanner, error) {
	scnr, err := engine.NewScanner(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine scanner: %w", err)
	}
	return scnr, nil
}
