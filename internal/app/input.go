package app

import (
	"fmt"
	"math"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gomol/internal/host"
	"github.com/philipparndt/gomol/pkg/engine"
)

// handleInput processes keyboard, mouse and dropped files
func (app *App) handleInput() {
	app.handleDroppedFiles()
	app.handleMouse()
	app.handleKeys()
}

func (app *App) handleDroppedFiles() {
	if !rl.IsFileDropped() {
		return
	}
	paths := rl.LoadDroppedFiles()
	rl.UnloadDroppedFiles()

	// dropping onto a viewport makes it active
	if i := app.viewAt(rl.GetMousePosition()); i >= 0 {
		_ = app.coord.SetActive(i)
	}
	i := app.coord.Active()

	app.log.Info("files dropped", "viewport", i, "count", len(paths))

	go func() {
		unknown, _ := host.Drop(app.ctx, app.coord, i, paths)
		for _, p := range unknown {
			app.setNotice(fmt.Sprintf("Viewport %d: unsupported file %s", i+1, filepath.Base(p)))
		}
		app.track(i)
	}()
}

func (app *App) handleMouse() {
	mouse := rl.GetMousePosition()

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		if i := app.viewAt(mouse); i >= 0 {
			_ = app.coord.SetActive(i)
			app.Interaction.dragging = true
			app.Interaction.dragView = i
		}
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		app.Interaction.dragging = false
	}

	if app.Interaction.dragging && rl.IsMouseButtonDown(rl.MouseLeftButton) {
		delta := rl.GetMouseDelta()
		if math.Abs(float64(delta.X)) > 0 || math.Abs(float64(delta.Y)) > 0 {
			app.views[app.Interaction.dragView].Camera.rotate(delta)
		}
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		if i := app.viewAt(mouse); i >= 0 {
			app.views[i].Camera.zoomBy(wheel)
		}
	}
}

func (app *App) handleKeys() {
	ctx := app.ctx
	shift := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
	step := 1
	if shift {
		step = -1
	}

	switch {
	case rl.IsKeyPressed(rl.KeyTab):
		n := app.coord.Len()
		_ = app.coord.SetActive(((app.coord.Active()+step)%n + n) % n)

	case ctrl && rl.IsKeyPressed(rl.KeyR):
		i := app.coord.Active()
		go func() {
			if err := app.coord.ResetSession(ctx, i); err == nil {
				app.untrack(i)
			}
		}()

	case rl.IsKeyPressed(rl.KeyS):
		_ = app.coord.ToggleSpin()

	case rl.IsKeyPressed(rl.KeyT):
		_ = app.coord.ToggleStereo()

	case rl.IsKeyPressed(rl.KeyP):
		mode := engine.Orthographic
		if app.coord.ActiveSession().Projection() == engine.Orthographic {
			mode = engine.Perspective
		}
		_ = app.coord.SetProjection(string(mode))

	case rl.IsKeyPressed(rl.KeyR):
		app.views[app.coord.Active()].Camera.reset()
		_ = app.coord.Recenter()

	case rl.IsKeyPressed(rl.KeySpace):
		_ = app.coord.ToggleAnimation(ctx)

	case rl.IsKeyPressed(rl.KeyF):
		_ = app.coord.ToggleFullscreen()

	case rl.IsKeyPressed(rl.KeyRight), rl.IsKeyPressed(rl.KeyLeft):
		if rl.IsKeyPressed(rl.KeyLeft) {
			step = -1
		}
		s := app.coord.ActiveSession()
		next := host.NextRepresentation(s.Representation().Type, s.RepresentationTypes(), step)
		_ = app.coord.SetRepresentation(ctx, next)

	case rl.IsKeyPressed(rl.KeyB):
		current := app.coord.ActiveSession().Snapshot().Background
		_ = app.coord.SetBackgroundColor(host.NextColor(current, host.Backgrounds, step))

	case rl.IsKeyPressed(rl.KeyC):
		current := app.coord.ActiveSession().Snapshot().StructureColor
		_ = app.coord.SetStructureColor(ctx, host.NextColor(current, host.StructureColors, step))

	case rl.IsKeyPressed(rl.KeyH), rl.IsKeyPressed(rl.KeyF1):
		app.UI.showHelp = !app.UI.showHelp
	}
}

// viewAt returns the viewport under p, or -1
func (app *App) viewAt(p rl.Vector2) int {
	for i, v := range app.views {
		if rl.CheckCollisionPointRec(p, v.bounds) {
			return i
		}
	}
	return -1
}
