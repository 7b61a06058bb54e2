// Package app is the raylib host: a window split into one viewport per
// session, keyboard and mouse controls, file drops and reload on change.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gomol/internal/host"
	"github.com/philipparndt/gomol/internal/platform/config"
	"github.com/philipparndt/gomol/internal/platform/metrics"
	"github.com/philipparndt/gomol/internal/status"
	"github.com/philipparndt/gomol/internal/viewport"
	"github.com/philipparndt/gomol/pkg/molengine"
)

const shutdownTimeout = 5 * time.Second

// Options configures Run
type Options struct {
	Config config.Config
	// Files holds the files to load per viewport; extra entries are ignored
	Files   []host.Files
	Log     *slog.Logger
	Metrics *metrics.Metrics
}

type App struct {
	ctx      context.Context
	log      *slog.Logger
	coord    *viewport.Coordinator
	views    []*ViewState
	reloader *host.Reloader

	Interaction InteractionState
	Notice      NoticeState
	Window      WindowState
	UI          UIState
}

// rayCanvas reports the viewport size; the window is redrawn every frame so
// refresh requests need no action
type rayCanvas struct {
	view *ViewState
}

func (c rayCanvas) Refresh() {}

func (c rayCanvas) Size() (int, int) {
	c.view.mu.Lock()
	defer c.view.mu.Unlock()
	return c.view.width, c.view.height
}

// rayContainer queues fullscreen changes for the main loop, raylib calls
// are only allowed on the main thread
type rayContainer struct {
	window *WindowState
}

func (c rayContainer) SetFullScreen(on bool) error {
	c.window.mu.Lock()
	defer c.window.mu.Unlock()
	c.window.request = &on
	return nil
}

func (c rayContainer) FullScreen() bool {
	c.window.mu.Lock()
	defer c.window.mu.Unlock()
	if c.window.request != nil {
		return *c.window.request
	}
	return c.window.fullscreen
}

// Run opens the window and blocks until it is closed or ctx is done
func Run(ctx context.Context, opts Options) error {
	log := opts.Log
	sessions, err := host.NewSessions(opts.Config, log, opts.Metrics)
	if err != nil {
		return err
	}

	// Initialize window
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint) // Must be before InitWindow
	rl.InitWindow(1400, 900, "gomol")
	rl.SetTargetFPS(60)
	defer rl.CloseWindow()

	app := &App{ctx: ctx, log: log}
	app.views = make([]*ViewState, len(sessions))
	for i := range app.views {
		app.views[i] = &ViewState{Camera: newCameraState()}
	}
	app.layout()

	for i, s := range sessions {
		if err := s.Mount(ctx, rayCanvas{app.views[i]}, rayContainer{&app.Window}); err != nil {
			return fmt.Errorf("failed to mount %s: %w", s.Name(), err)
		}
	}
	app.coord = viewport.NewCoordinator(sessions, log, opts.Metrics)
	app.coord.SetNotify(func(i int, err error) { app.setNotice(host.Notice(i, err)) })
	defer app.shutdown()

	if opts.Config.Watch {
		if app.reloader, err = host.NewReloader(ctx, app.coord, log); err != nil {
			log.Warn("auto-reload will not be available", "error", err)
		}
	}

	var srv *status.Server
	if opts.Config.StatusAddr != "" {
		srv = status.Start(opts.Config.StatusAddr, status.NewRouter(app.coord, opts.Metrics, log), log)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	for i, files := range opts.Files {
		if i >= len(sessions) || files.Empty() {
			continue
		}
		i, files := i, files
		go func() {
			_ = host.Load(ctx, app.coord, i, files)
			app.track(i)
		}()
	}

	// Main loop
	for !rl.WindowShouldClose() && ctx.Err() == nil {
		ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
		if ctrl && rl.IsKeyPressed(rl.KeyC) {
			break
		}

		app.applyWindowRequests()
		app.layout()
		app.handleInput()
		app.draw()
	}
	return nil
}

func (app *App) draw() {
	scenes := make([]molengine.Scene, len(app.views))
	snaps := app.coord.Snapshots()
	for i, v := range app.views {
		if src, ok := app.coord.Session(i).Engine().(host.SceneSource); ok {
			scenes[i] = src.Scene()
		}
		v.renderEyes(scenes[i])
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(15, 18, 25, 255))
	for i, v := range app.views {
		v.blit(scenes[i].Stereo.Enabled)
		app.drawViewportUI(i, scenes[i], snaps[i])
	}
	app.drawUI()
	rl.EndDrawing()
}

// layout splits the window horizontally into one column per viewport
func (app *App) layout() {
	width := float32(rl.GetScreenWidth())
	height := float32(rl.GetScreenHeight())
	n := float32(len(app.views))
	for i, v := range app.views {
		v.bounds = rl.Rectangle{X: float32(i) * width / n, Y: 0, Width: width / n, Height: height}
		v.mu.Lock()
		v.width, v.height = int(v.bounds.Width), int(v.bounds.Height)
		v.mu.Unlock()
	}
}

func (app *App) applyWindowRequests() {
	app.Window.mu.Lock()
	defer app.Window.mu.Unlock()
	if app.Window.request != nil && *app.Window.request != rl.IsWindowFullscreen() {
		rl.ToggleFullscreen()
	}
	app.Window.request = nil
	app.Window.fullscreen = rl.IsWindowFullscreen()
}

// track watches the files currently loaded into viewport i
func (app *App) track(i int) {
	if app.reloader == nil {
		return
	}
	top, traj := app.coord.Session(i).Files()
	if err := app.reloader.Track(i, host.Files{Topology: top, Trajectory: traj}); err != nil {
		app.log.Warn("failed to watch files", "viewport", i, "error", err)
	}
}

func (app *App) untrack(i int) {
	if app.reloader != nil {
		_ = app.reloader.Track(i, host.Files{})
	}
}

func (app *App) shutdown() {
	if app.reloader != nil {
		_ = app.reloader.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.coord.Close(ctx); err != nil {
		app.log.Warn("failed to unmount viewports", "error", err)
	}
	for _, v := range app.views {
		v.unloadTargets()
	}
}
