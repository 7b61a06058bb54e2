package viewport

import (
	"context"
	"image/color"

	"github.com/philipparndt/gomol/pkg/engine"
)

// MainTag is the stable tag of the single representation slot a session owns
const MainTag = "main"

// representation kinds the viewer does not offer
var excludedRepresentations = map[string]bool{
	"gaussian-volume":      true,
	"gaussian-surface":     true,
	"cross-link-restraint": true,
	"ellipsoid":            true,
	"carbohydrate":         true,
	"interactions":         true,
}

// RepresentationSpec is the active representation of a session
type RepresentationSpec struct {
	Type  string
	Color color.RGBA
}

func filterRepresentationTypes(types []engine.RepresentationType) []engine.RepresentationType {
	var out []engine.RepresentationType
	for _, t := range types {
		if t.Tag == "" || excludedRepresentations[t.Tag] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// pickRepresentation returns preferred when advertised, else the first type
func pickRepresentation(types []engine.RepresentationType, preferred string) string {
	for _, t := range types {
		if t.Tag == preferred {
			return preferred
		}
	}
	return types[0].Tag
}

func advertised(types []engine.RepresentationType, tag string) bool {
	for _, t := range types {
		if t.Tag == tag {
			return true
		}
	}
	return false
}

// commitRepresentation performs the single tagged upsert
func (s *Session) commitRepresentation(ctx context.Context, eng engine.Engine, structure engine.Ref, typ string, theme engine.ColorTheme) error {
	params := engine.RepresentationParams{Type: typ, ColorTheme: theme}
	if err := eng.UpsertRepresentation(ctx, structure, MainTag, params); err != nil {
		return engineFailed(StageRepresentation, err)
	}
	s.metrics.IncUpserts()
	return nil
}

// SetRepresentation switches the representation type, keeping the structure
// color
func (s *Session) SetRepresentation(ctx context.Context, typ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertRepresentation(ctx, typ, nil)
}

// upsertRepresentation updates the main slot in place; must be called with
// s.mu held. The effective color is c when given, else the current structure
// color. Nothing changes on error.
func (s *Session) upsertRepresentation(ctx context.Context, typ string, c *color.RGBA) error {
	if !s.ready {
		return s.reject(notMet("engine not ready"))
	}
	if !s.state.HasStructure() || s.inFlight || s.structure == "" {
		return s.reject(notMet("no structure loaded"))
	}
	if len(s.representationTypes) == 0 {
		return s.reject(notMet("no representation types available"))
	}
	if typ == "" || !advertised(s.representationTypes, typ) {
		return s.reject(notMet("unknown representation %q", typ))
	}

	effective := s.structureColor
	if c != nil {
		effective = *c
	}
	if err := s.commitRepresentation(ctx, s.engine, s.structure, typ, engine.UniformColor(effective)); err != nil {
		s.lastErr = err
		s.log.Error("representation update failed", "type", typ, "error", err)
		return err
	}

	s.representation = typ
	s.structureColor = effective
	s.log.Debug("representation updated", "type", typ, "color", HexColor(effective))
	return nil
}

// Representation returns the active representation
func (s *Session) Representation() RepresentationSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RepresentationSpec{Type: s.representation, Color: s.structureColor}
}

// RepresentationTypes returns the representation types offered to the user
func (s *Session) RepresentationTypes() []engine.RepresentationType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]engine.RepresentationType, len(s.representationTypes))
	copy(out, s.representationTypes)
	return out
}
