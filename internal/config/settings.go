package config

import (
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Service holds the mutable runtime settings. Reads and updates are safe
// for concurrent use; an update swaps the whole forward section at once,
// so a delivery in flight sees either the old or the new settings, never
// a mix.
type Service struct {
	mu      sync.RWMutex
	forward ForwardConfig
	path    string
}

// NewService creates a settings service seeded from the loaded config.
// When path is non-empty, updates are persisted there as YAML.
func NewService(cfg ForwardConfig, path string) *Service {
	return &Service{forward: cfg, path: path}
}

// Forward returns the current webhook delivery settings.
func (s *Service) Forward() ForwardConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forward
}

// UpdateForward replaces the webhook delivery settings and persists them.
func (s *Service) UpdateForward(cfg ForwardConfig) error {
	s.mu.Lock()
	s.forward = cfg
	path := s.path
	s.mu.Unlock()

	zap.L().Info("config: forward settings updated",
		zap.String("url", cfg.URL),
		zap.String("format", cfg.Format),
	)

	if path == "" {
		return nil
	}
	return s.save(cfg, path)
}

func (s *Service) save(cfg ForwardConfig, path string) error {
	data, err := yaml.Marshal(map[string]ForwardConfig{"forward": cfg})
	if err != nil {
		return eris.Wrap(err, "config: marshal settings")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return eris.Wrap(err, "config: write settings file")
	}
	return nil
}
