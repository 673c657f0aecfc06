package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wabisaby/toolrank/internal/model"
)

// CacheWriter dumps the ranked list to disk for inspection. The file is never
// read back.
type CacheWriter struct {
	path   string
	logger *zap.Logger
}

func NewCacheWriter(path string, logger *zap.Logger) *CacheWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheWriter{path: path, logger: logger.Named("cache")}
}

// Write overwrites the cache file with indented JSON. Failures are logged
// and returned; callers are expected to carry on.
func (w *CacheWriter) Write(tools []model.Tool) error {
	if tools == nil {
		tools = []model.Tool{}
	}
	data, err := json.MarshalIndent(tools, "", "    ")
	if err != nil {
		w.logger.Error("error writing cache", zap.String("path", w.path), zap.Error(err))
		return fmt.Errorf("encode cache: %w", err)
	}

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.logger.Error("error writing cache", zap.String("path", w.path), zap.Error(err))
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(w.path, data, 0o644); err != nil {
		w.logger.Error("error writing cache", zap.String("path", w.path), zap.Error(err))
		return fmt.Errorf("write cache: %w", err)
	}

	w.logger.Debug("cache written", zap.String("path", w.path), zap.Int("tools", len(tools)))
	return nil
}
