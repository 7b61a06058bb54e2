package viewer

import (
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gomol/pkg/engine"
	"github.com/philipparndt/gomol/pkg/geometry"
	"github.com/philipparndt/gomol/pkg/molengine"
)

const repaintInterval = time.Second / 30

// SceneSource provides the scene to draw
type SceneSource interface {
	Scene() molengine.Scene
}

// MoleculeView is a widget drawing a molecular scene
type MoleculeView struct {
	widget.BaseWidget

	mu        sync.Mutex
	source    SceneSource
	camera    *Camera
	width     int
	height    int
	moving    bool
	dragStart *fyne.Position

	raster *canvas.Raster
	stop   chan struct{}
	once   sync.Once
}

// NewMoleculeView creates an empty view. It repaints on its own while the
// scene is moving until Close is called.
func NewMoleculeView() *MoleculeView {
	v := &MoleculeView{
		camera: NewCamera(geometry.Vector3{}, 50),
		stop:   make(chan struct{}),
	}
	v.raster = canvas.NewRaster(v.paint)
	v.ExtendBaseWidget(v)
	go v.repaintLoop()
	return v
}

// SetSource sets the scene source and repaints
func (v *MoleculeView) SetSource(src SceneSource) {
	v.mu.Lock()
	v.source = src
	v.mu.Unlock()
	v.repaint()
}

// Canvas returns the engine facing drawing surface of the view
func (v *MoleculeView) Canvas() engine.Canvas {
	return viewCanvas{v}
}

// Close stops the repaint loop
func (v *MoleculeView) Close() {
	v.once.Do(func() { close(v.stop) })
}

func (v *MoleculeView) paint(w, h int) image.Image {
	v.mu.Lock()
	src := v.source
	v.width, v.height = w, h
	v.mu.Unlock()

	if src == nil {
		return image.NewUniform(color.Black)
	}
	scene := src.Scene()

	v.mu.Lock()
	defer v.mu.Unlock()
	v.moving = scene.Moving
	return Render(scene, v.camera, w, h)
}

func (v *MoleculeView) repaint() {
	fyne.Do(v.raster.Refresh)
}

func (v *MoleculeView) repaintLoop() {
	ticker := time.NewTicker(repaintInterval)
	defer ticker.Stop()
	for {
		select {
		case <-v.stop:
			return
		case <-ticker.C:
			v.mu.Lock()
			moving := v.moving
			v.mu.Unlock()
			if moving {
				v.repaint()
			}
		}
	}
}

// Dragged handles mouse drag events for rotation
func (v *MoleculeView) Dragged(event *fyne.DragEvent) {
	v.mu.Lock()
	if v.dragStart != nil {
		deltaX := event.Position.X - v.dragStart.X
		deltaY := event.Position.Y - v.dragStart.Y
		v.camera.Rotate(float64(-deltaY)*0.01, float64(-deltaX)*0.01)
	}
	pos := event.Position
	v.dragStart = &pos
	v.mu.Unlock()
	v.raster.Refresh()
}

// DragEnd handles the end of a drag event
func (v *MoleculeView) DragEnd() {
	v.mu.Lock()
	v.dragStart = nil
	v.mu.Unlock()
}

// Scrolled handles scroll events for zooming
func (v *MoleculeView) Scrolled(event *fyne.ScrollEvent) {
	v.mu.Lock()
	v.camera.ZoomBy(-float64(event.Scrolled.DY) * 0.001)
	v.mu.Unlock()
	v.raster.Refresh()
}

// CreateRenderer creates the renderer for the widget
func (v *MoleculeView) CreateRenderer() fyne.WidgetRenderer {
	return &moleculeViewRenderer{view: v}
}

type moleculeViewRenderer struct {
	view *MoleculeView
}

func (r *moleculeViewRenderer) Layout(size fyne.Size) {
	r.view.raster.Resize(size)
}

func (r *moleculeViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 320)
}

func (r *moleculeViewRenderer) Refresh() {
	r.view.raster.Refresh()
}

func (r *moleculeViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.raster}
}

func (r *moleculeViewRenderer) Destroy() {
	r.view.Close()
}

// viewCanvas adapts the widget to engine.Canvas; the engine refreshes from
// its own goroutines
type viewCanvas struct {
	view *MoleculeView
}

func (c viewCanvas) Refresh() {
	c.view.repaint()
}

func (c viewCanvas) Size() (int, int) {
	c.view.mu.Lock()
	defer c.view.mu.Unlock()
	return c.view.width, c.view.height
}

// WindowContainer adapts a fyne window to engine.Container
type WindowContainer struct {
	Window fyne.Window
}

func (w WindowContainer) SetFullScreen(on bool) error {
	fyne.Do(func() { w.Window.SetFullScreen(on) })
	return nil
}

func (w WindowContainer) FullScreen() bool {
	return w.Window.FullScreen()
}
