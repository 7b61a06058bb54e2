package molengine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/philipparndt/gomol/pkg/engine"
)

// spillToTemp writes in-memory asset data to a temporary file keeping the
// original extension, since the gochem readers work on file names
func spillToTemp(asset engine.Asset) (string, error) {
	f, err := os.CreateTemp("", "gomol_asset_*"+filepath.Ext(asset.Label))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(asset.Data); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return f.Name(), nil
}

// removeTempFiles must be called with e.mu held
func (e *Engine) removeTempFiles() {
	for _, path := range e.tempFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.log.Warn("failed to remove temp file", "path", path, "error", err)
		}
	}
	e.tempFiles = nil
}
