package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wabisaby/toolrank/internal/model"
)

// CatalogLoader reads the static tool catalog from disk.
type CatalogLoader struct {
	path   string
	logger *zap.Logger
}

func NewCatalogLoader(path string, logger *zap.Logger) *CatalogLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogLoader{path: path, logger: logger.Named("catalog")}
}

// Load returns the catalog records in file order. A missing or unreadable
// catalog is logged and yields an empty list so startup can continue.
func (l *CatalogLoader) Load(ctx context.Context) []model.Tool {
	if err := ctx.Err(); err != nil {
		return []model.Tool{}
	}

	tools, err := l.read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("catalog file not found", zap.String("path", l.path))
		} else {
			l.logger.Error("failed to load catalog", zap.String("path", l.path), zap.Error(err))
		}
		return []model.Tool{}
	}

	l.logger.Info("catalog loaded", zap.String("path", l.path), zap.Int("tools", len(tools)))
	return tools
}

func (l *CatalogLoader) read() ([]model.Tool, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".yaml", ".yml":
		return l.decodeYAML(data)
	default:
		return l.decodeJSON(data)
	}
}

// decodeJSON builds each record on its own so that one malformed entry does
// not discard the rest of the catalog. Entries that are not objects become
// empty records.
func (l *CatalogLoader) decodeJSON(data []byte) ([]model.Tool, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	tools := make([]model.Tool, 0, len(raw))
	for i, item := range raw {
		var tool model.Tool
		if err := json.Unmarshal(item, &tool); err != nil {
			l.logger.Warn("malformed catalog record", zap.Int("index", i), zap.Error(err))
			tool = model.NewTool(nil)
		}
		tools = append(tools, tool)
	}
	return tools, nil
}

func (l *CatalogLoader) decodeYAML(data []byte) ([]model.Tool, error) {
	var raw []any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	tools := make([]model.Tool, 0, len(raw))
	for i, item := range raw {
		fields, ok := item.(map[string]any)
		if !ok && item != nil {
			l.logger.Warn("malformed catalog record", zap.Int("index", i))
		}
		tools = append(tools, model.NewTool(fields))
	}
	return tools, nil
}
