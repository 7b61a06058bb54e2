package molengine

import (
	"context"
	"fmt"
	"image/color"

	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/geometry"
)

// PresetTag tags the representations created by ApplyDefaultPreset
const PresetTag = "preset"

var registry = []engine.RepresentationType{
	{Tag: "cartoon", Label: "Cartoon"},
	{Tag: "backbone", Label: "Backbone"},
	{Tag: "ball-and-stick", Label: "Ball & Stick"},
	{Tag: "carbohydrate", Label: "Carbohydrate"},
	{Tag: "ellipsoid", Label: "Ellipsoid"},
	{Tag: "gaussian-surface", Label: "Gaussian Surface"},
	{Tag: "gaussian-volume", Label: "Gaussian Volume"},
	{Tag: "label", Label: "Label"},
	{Tag: "line", Label: "Line"},
	{Tag: "molecular-surface", Label: "Molecular Surface"},
	{Tag: "orientation", Label: "Orientation"},
	{Tag: "point", Label: "Point"},
	{Tag: "putty", Label: "Putty"},
	{Tag: "spacefill", Label: "Spacefill"},
	{Tag: "cross-link-restraint", Label: "Cross Link Restraint"},
	{Tag: "interactions", Label: "Non-covalent Interactions"},
}

func knownType(tag string) bool {
	for _, t := range registry {
		if t.Tag == tag {
			return true
		}
	}
	return false
}

// RepresentationTypes returns the representation registry
func (e *Engine) RepresentationTypes() []engine.RepresentationType {
	out := make([]engine.RepresentationType, len(registry))
	copy(out, registry)
	return out
}

// ApplyDefaultPreset materializes a structure from the trajectory and adds
// the default representation. Earlier structures are replaced; the viewer
// shows one structure at a time.
func (e *Engine) ApplyDefaultPreset(ctx context.Context, traj engine.Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	if err := e.checkReady(); err != nil {
		e.mu.Unlock()
		return err
	}
	t, ok := e.trajectories[traj]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("trajectory %s: %w", traj, engine.ErrStaleRef)
	}
	atoms, frames := t.atoms, t.frames
	e.mu.Unlock()

	s := &structure{
		trajectory: traj,
		atoms:      atoms,
		frames:     frames,
		bonds:      inferBonds(atoms, frames[0]),
		trace:      backboneTrace(atoms),
	}
	presetType := "ball-and-stick"
	if len(s.trace) > 1 {
		presetType = "cartoon"
	}

	e.mu.Lock()
	for ref := range e.structures {
		e.removeStructureLocked(ref)
	}
	ref := e.newRef("structure")
	e.structures[ref] = s
	reprRef := e.newRef("representation")
	e.representations[reprRef] = &representation{
		structure: ref,
		tag:       PresetTag,
		params: engine.RepresentationParams{
			Type:       presetType,
			ColorTheme: engine.ColorTheme{Name: "element-symbol", Value: color.RGBA{R: 200, G: 200, B: 200, A: 255}},
		},
	}
	e.view.frame = 0
	if !e.view.focused {
		// the first structure is framed right away
		sphere := geometry.BoundingSphere(frames[0], sphereMargin)
		e.view.move = cameraMove{toTarget: sphere.Center, toDistance: sphere.Radius * focusDistanceFactor}
		e.view.focused = true
	}
	e.mu.Unlock()

	e.animation.bind(len(frames))
	e.log.Debug("preset applied", "structure", ref, "atoms", len(atoms), "bonds", len(s.bonds), "frames", len(frames))
	e.refresh()
	return nil
}

// removeStructureLocked must be called with e.mu held
func (e *Engine) removeStructureLocked(ref engine.Ref) {
	for rref, r := range e.representations {
		if r.structure == ref {
			delete(e.representations, rref)
			e.forget(rref)
		}
	}
	delete(e.structures, ref)
	e.forget(ref)
}

// UpsertRepresentation updates the representation with the given tag on the
// structure in place, creating it on first use
func (e *Engine) UpsertRepresentation(ctx context.Context, structureRef engine.Ref, tag string, params engine.RepresentationParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tag == "" {
		return fmt.Errorf("representation tag is required")
	}
	if !knownType(params.Type) {
		return fmt.Errorf("unknown representation type %q", params.Type)
	}

	e.mu.Lock()
	if err := e.checkReady(); err != nil {
		e.mu.Unlock()
		return err
	}
	if _, ok := e.structures[structureRef]; !ok {
		e.mu.Unlock()
		return fmt.Errorf("structure %s: %w", structureRef, engine.ErrStaleRef)
	}

	updated := false
	for _, r := range e.representations {
		if r.structure == structureRef && r.tag == tag {
			r.params = params
			updated = true
			break
		}
	}
	if !updated {
		ref := e.newRef("representation")
		e.representations[ref] = &representation{structure: structureRef, tag: tag, params: params}
	}
	e.mu.Unlock()

	e.refresh()
	return nil
}

// RemoveRepresentation deletes a representation node
func (e *Engine) RemoveRepresentation(ctx context.Context, ref engine.Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	if err := e.checkReady(); err != nil {
		e.mu.Unlock()
		return err
	}
	if _, ok := e.representations[ref]; !ok {
		e.mu.Unlock()
		return fmt.Errorf("representation %s: %w", ref, engine.ErrStaleRef)
	}
	delete(e.representations, ref)
	e.forget(ref)
	e.mu.Unlock()

	e.refresh()
	return nil
}

// RepresentationParams returns the parameters of a representation node
func (e *Engine) RepresentationParams(ref engine.Ref) (engine.RepresentationParams, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.representations[ref]
	if !ok {
		return engine.RepresentationParams{}, false
	}
	return r.params, true
}
