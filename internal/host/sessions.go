package host

import (
	"fmt"
	"log/slog"

	"github.com/philipparndt/gomol/internal/platform/config"
	"github.com/philipparndt/gomol/internal/platform/metrics"
	"github.com/philipparndt/gomol/internal/viewport"
	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/molengine"
)

const maxFPS = 60

// NewSessions creates cfg.Viewports unmounted sessions backed by molengine
func NewSessions(cfg config.Config, log *slog.Logger, m *metrics.Metrics) ([]*viewport.Session, error) {
	background, err := viewport.ParseColor(cfg.Background)
	if err != nil {
		return nil, fmt.Errorf("invalid background: %w", err)
	}
	structure, err := viewport.ParseColor(cfg.StructureColor)
	if err != nil {
		return nil, fmt.Errorf("invalid structure color: %w", err)
	}

	factory := molengine.Factory(log)
	sessions := make([]*viewport.Session, cfg.Viewports)
	for i := range sessions {
		sessions[i] = viewport.NewSession(viewport.Options{
			Name:    fmt.Sprintf("viewport-%d", i+1),
			Factory: factory,
			Engine: engine.Config{
				Background:   background,
				AnimationFPS: cfg.AnimationFPS,
				MaxFPS:       maxFPS,
			},
			Background:            background,
			StructureColor:        structure,
			DefaultRepresentation: cfg.DefaultRepresentation,
			Logger:                log,
			Metrics:               m,
		})
	}
	return sessions, nil
}
