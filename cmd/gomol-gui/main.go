package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gomol/internal/host"
	"github.com/philipparndt/gomol/internal/platform/config"
	"github.com/philipparndt/gomol/internal/platform/logger"
	"github.com/philipparndt/gomol/internal/platform/metrics"
	"github.com/philipparndt/gomol/internal/status"
	"github.com/philipparndt/gomol/internal/viewport"
	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/molengine"
	"github.com/philipparndt/gomol/pkg/viewer"
	"github.com/philipparndt/gomol/version"
)

const (
	syncInterval    = 250 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

type App struct {
	ctx      context.Context
	log      *slog.Logger
	window   fyne.Window
	coord    *viewport.Coordinator
	views    []*viewer.MoleculeView
	reloader *host.Reloader

	controls Controls
	labels   []*widget.Label
	notice   *widget.Label

	// syncing suppresses change callbacks while widgets are updated from
	// session state
	mu      sync.Mutex
	syncing bool
}

// Controls holds the toolbar widgets acting on the active viewport
type Controls struct {
	active         *widget.RadioGroup
	representation *widget.Select
	spin           *widget.Check
	stereo         *widget.Check
	orthographic   *widget.Check
	play           *widget.Button
}

// sessionScene follows the session's current engine, which changes on reset
type sessionScene struct {
	session *viewport.Session
}

func (s sessionScene) Scene() molengine.Scene {
	if src, ok := s.session.Engine().(viewer.SceneSource); ok {
		return src.Scene()
	}
	return molengine.Scene{}
}

func main() {
	_ = config.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	met := metrics.New()

	if err := run(cfg, log, met, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger, met *metrics.Metrics, args []string) error {
	files, unknown := host.Sort(args)
	if len(unknown) > 0 {
		return fmt.Errorf("unsupported file: %s", unknown[0])
	}

	sessions, err := host.NewSessions(cfg, log, met)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := app.New()
	w := a.NewWindow("gomol " + version.GetFullVersion())
	gui := &App{ctx: ctx, log: log, window: w}

	for _, s := range sessions {
		view := viewer.NewMoleculeView()
		if err := s.Mount(ctx, view.Canvas(), viewer.WindowContainer{Window: w}); err != nil {
			return fmt.Errorf("failed to mount %s: %w", s.Name(), err)
		}
		view.SetSource(sessionScene{s})
		gui.views = append(gui.views, view)
	}
	gui.coord = viewport.NewCoordinator(sessions, log, met)
	gui.coord.SetNotify(func(i int, err error) {
		text := host.Notice(i, err)
		fyne.Do(func() { gui.notice.SetText(text) })
	})

	if cfg.Watch {
		if gui.reloader, err = host.NewReloader(ctx, gui.coord, log); err != nil {
			log.Warn("auto-reload will not be available", "error", err)
		}
	}
	if cfg.StatusAddr != "" {
		srv := status.Start(cfg.StatusAddr, status.NewRouter(gui.coord, met, log), log)
		defer srv.Shutdown(context.Background())
	}

	w.SetContent(gui.build())
	w.Resize(fyne.NewSize(1400, 800))
	w.SetOnClosed(gui.shutdown)
	w.SetOnDropped(gui.drop)

	if !files.Empty() {
		gui.load(0, files)
	}
	go gui.syncLoop()

	w.ShowAndRun()
	return nil
}

func (g *App) build() fyne.CanvasObject {
	names := make([]string, len(g.views))
	for i := range names {
		names[i] = fmt.Sprintf("Viewport %d", i+1)
	}

	c := &g.controls
	c.active = widget.NewRadioGroup(names, func(selected string) {
		for i, n := range names {
			if n == selected {
				_ = g.coord.SetActive(i)
			}
		}
		g.sync()
	})
	c.active.Horizontal = true
	c.active.Required = true

	c.representation = widget.NewSelect(nil, func(typ string) {
		if g.isSyncing() || typ == "" {
			return
		}
		_ = g.coord.SetRepresentation(g.ctx, typ)
	})
	c.representation.PlaceHolder = "Representation"

	c.spin = widget.NewCheck("Spin", func(bool) {
		if !g.isSyncing() {
			_ = g.coord.ToggleSpin()
		}
	})
	c.stereo = widget.NewCheck("Stereo", func(bool) {
		if !g.isSyncing() {
			_ = g.coord.ToggleStereo()
		}
	})
	c.orthographic = widget.NewCheck("Orthographic", func(on bool) {
		if g.isSyncing() {
			return
		}
		mode := engine.Perspective
		if on {
			mode = engine.Orthographic
		}
		_ = g.coord.SetProjection(string(mode))
	})
	c.play = widget.NewButton("Play", func() {
		_ = g.coord.ToggleAnimation(g.ctx)
		g.sync()
	})

	toolbar := container.NewHBox(
		c.active,
		widget.NewSeparator(),
		widget.NewButton("Open Topology", func() { g.open(host.Topology) }),
		widget.NewButton("Open Trajectory", func() { g.open(host.Trajectory) }),
		c.representation,
		widget.NewButton("Background", func() { g.pickColor("Background", g.coord.SetBackgroundColor) }),
		widget.NewButton("Color", func() {
			g.pickColor("Structure Color", func(v string) error { return g.coord.SetStructureColor(g.ctx, v) })
		}),
		c.spin,
		c.stereo,
		c.orthographic,
		widget.NewButton("Recenter", func() { _ = g.coord.Recenter() }),
		c.play,
		widget.NewButton("Fullscreen", func() { _ = g.coord.ToggleFullscreen() }),
		widget.NewButton("Reset", g.reset),
	)

	columns := make([]fyne.CanvasObject, len(g.views))
	for i, v := range g.views {
		label := widget.NewLabel("")
		g.labels = append(g.labels, label)
		columns[i] = container.NewBorder(nil, label, nil, nil, v)
	}
	g.notice = widget.NewLabel("Open a topology file to start")
	c.active.SetSelected(names[0])

	return container.NewBorder(
		container.NewHScroll(toolbar), // top
		g.notice,                      // bottom
		nil,                           // left
		nil,                           // right
		container.NewGridWithColumns(len(columns), columns...),
	)
}

// open shows a file dialog for the active viewport
func (g *App) open(kind host.Kind) {
	i := g.coord.Active()
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		if kind == host.Topology {
			g.load(i, host.Files{Topology: path})
		} else {
			g.load(i, host.Files{Trajectory: path})
		}
	}, g.window)

	exts := molengine.TopologyExtensions()
	if kind == host.Trajectory {
		exts = molengine.CoordinateExtensions()
	}
	d.SetFilter(storage.NewExtensionFileFilter(exts))
	d.Show()
}

func (g *App) load(i int, files host.Files) {
	g.notice.SetText(fmt.Sprintf("Viewport %d: loading...", i+1))
	go func() {
		if err := host.Load(g.ctx, g.coord, i, files); err == nil {
			fyne.Do(func() { g.notice.SetText(fmt.Sprintf("Viewport %d: loaded", i+1)) })
		}
		g.track(i)
		fyne.Do(g.sync)
	}()
}

// drop loads files dropped onto the window into the active viewport
func (g *App) drop(_ fyne.Position, uris []fyne.URI) {
	paths := make([]string, len(uris))
	for j, u := range uris {
		paths[j] = u.Path()
	}
	i := g.coord.Active()
	g.notice.SetText(fmt.Sprintf("Viewport %d: loading...", i+1))
	go func() {
		unknown, err := host.Drop(g.ctx, g.coord, i, paths)
		if len(unknown) > 0 {
			text := fmt.Sprintf("Viewport %d: unsupported file %s", i+1, filepath.Base(unknown[0]))
			fyne.Do(func() { g.notice.SetText(text) })
		} else if err == nil {
			fyne.Do(func() { g.notice.SetText(fmt.Sprintf("Viewport %d: loaded", i+1)) })
		}
		g.track(i)
		fyne.Do(g.sync)
	}()
}

func (g *App) reset() {
	i := g.coord.Active()
	go func() {
		if err := g.coord.ResetSession(g.ctx, i); err == nil {
			if g.reloader != nil {
				_ = g.reloader.Track(i, host.Files{})
			}
		}
		fyne.Do(g.sync)
	}()
}

func (g *App) track(i int) {
	if g.reloader == nil {
		return
	}
	top, traj := g.coord.Session(i).Files()
	if err := g.reloader.Track(i, host.Files{Topology: top, Trajectory: traj}); err != nil {
		g.log.Warn("failed to watch files", "viewport", i, "error", err)
	}
}

func (g *App) pickColor(title string, apply func(string) error) {
	picker := dialog.NewColorPicker(title, "", func(c color.Color) {
		r, gr, b, _ := c.RGBA()
		hex := viewport.HexColor(color.RGBA{R: uint8(r >> 8), G: uint8(gr >> 8), B: uint8(b >> 8), A: 255})
		_ = apply(hex)
	}, g.window)
	picker.Advanced = true
	picker.Show()
}

func (g *App) isSyncing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.syncing
}

// sync updates the widgets from session state; must run on the UI thread
func (g *App) sync() {
	g.mu.Lock()
	g.syncing = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.syncing = false
		g.mu.Unlock()
	}()

	snaps := g.coord.Snapshots()
	for i, snap := range snaps {
		text := fmt.Sprintf("%s: %s", snap.Name, snap.State)
		if snap.State.HasStructure() {
			text += fmt.Sprintf(" | %s | %d atoms", snap.Representation, snap.AtomCount)
		}
		if snap.FrameCount > 0 {
			text += fmt.Sprintf(" | %d frames", snap.FrameCount)
		}
		g.labels[i].SetText(text)
	}

	snap := snaps[g.coord.Active()]
	c := &g.controls
	c.representation.Options = snap.RepresentationTypes
	c.representation.Selected = snap.Representation
	c.representation.Refresh()
	c.spin.SetChecked(snap.Spinning)
	c.stereo.SetChecked(snap.Stereo)
	c.orthographic.SetChecked(snap.Projection == string(engine.Orthographic))
	if snap.Animating {
		c.play.SetText("Pause")
	} else {
		c.play.SetText("Play")
	}
}

func (g *App) syncLoop() {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-g.ctx.Done():
			return
		case <-ticker.C:
			fyne.Do(g.sync)
		}
	}
}

func (g *App) shutdown() {
	if g.reloader != nil {
		_ = g.reloader.Close()
	}
	for _, v := range g.views {
		v.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := g.coord.Close(ctx); err != nil {
		g.log.Warn("failed to unmount viewports", "error", err)
	}
}
