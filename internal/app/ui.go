package app

import (
	"fmt"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gomol/internal/viewport"
	"github.com/philipparndt/gomol/pkg/molengine"
	"github.com/philipparndt/gomol/version"
)

const (
	fontSize   = 16
	lineHeight = 20
	noticeTime = 4 * time.Second
)

var helpLines = []string{
	"Tab        switch viewport",
	"Left/Right representation",
	"B / C      background / structure color",
	"S          spin",
	"T          stereo",
	"P          perspective / orthographic",
	"R          recenter",
	"Space      play / pause trajectory",
	"F          fullscreen",
	"Ctrl+R     reset viewport",
	"Drag       rotate, wheel zoom",
	"Drop files to load them",
}

var spinnerChars = []string{"|", "/", "-", "\\"}

// drawViewportUI draws the status line and borders of viewport i
func (app *App) drawViewportUI(i int, scene molengine.Scene, snap viewport.Snapshot) {
	b := app.views[i].bounds
	x, y := int32(b.X)+10, int32(b.Y)+10
	fg := rl.NewColor(220, 220, 220, 255)

	title := snap.Name
	if snap.TopologyFile != "" {
		title += "  " + filepath.Base(snap.TopologyFile)
	}
	if snap.TrajectoryFile != "" {
		title += " + " + filepath.Base(snap.TrajectoryFile)
	}
	drawLabel(title, x, y, fg)
	y += lineHeight

	switch {
	case snap.Loading:
		spinner := spinnerChars[int(time.Now().UnixMilli()/100)%len(spinnerChars)]
		drawLabel(fmt.Sprintf("%s %s", spinner, snap.State), x, y, rl.Yellow)
	case snap.State == viewport.StateEmpty:
		drawLabel("Drop a topology file here", x, y, rl.Gray)
	default:
		line := fmt.Sprintf("%s | %s | %d atoms", snap.State, snap.Representation, snap.AtomCount)
		if scene.FrameCount > 1 {
			line += fmt.Sprintf(" | frame %d/%d", scene.Frame+1, scene.FrameCount)
		}
		drawLabel(line, x, y, fg)
	}
	y += lineHeight

	var flags string
	if snap.Spinning {
		flags += "[spin] "
	}
	if snap.Stereo {
		flags += "[stereo] "
	}
	if snap.Animating {
		flags += "[playing] "
	}
	flags += "[" + snap.Projection + "]"
	drawLabel(flags, x, y, rl.Gray)

	if i == app.coord.Active() && app.coord.Len() > 1 {
		rl.DrawRectangleLinesEx(b, 2, rl.NewColor(80, 160, 255, 255))
	} else {
		rl.DrawRectangleLinesEx(b, 1, rl.NewColor(60, 60, 60, 255))
	}
}

// drawUI draws the window wide overlays
func (app *App) drawUI() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	if text, ok := app.currentNotice(); ok {
		width := rl.MeasureText(text, fontSize) + 20
		x := (screenWidth - width) / 2
		y := screenHeight - 50
		rl.DrawRectangle(x, y, width, 30, rl.NewColor(0, 0, 0, 200))
		rl.DrawRectangleLines(x, y, width, 30, rl.Orange)
		rl.DrawText(text, x+10, y+7, fontSize, rl.Orange)
	}

	if !app.UI.showHelp {
		drawLabel("H for help", screenWidth-110, screenHeight-26, rl.Gray)
		return
	}

	height := int32(len(helpLines)+2) * lineHeight
	x, y := screenWidth-380, int32(40)
	rl.DrawRectangle(x, y, 360, height, rl.NewColor(0, 0, 0, 210))
	drawLabel("gomol "+version.GetFullVersion(), x+10, y+8, rl.White)
	for i, line := range helpLines {
		drawLabel(line, x+10, y+8+int32(i+1)*lineHeight, rl.LightGray)
	}
}

func drawLabel(text string, x, y int32, col rl.Color) {
	rl.DrawText(text, x+1, y+1, fontSize, rl.NewColor(0, 0, 0, 160))
	rl.DrawText(text, x, y, fontSize, col)
}

func (app *App) setNotice(text string) {
	app.Notice.mu.Lock()
	defer app.Notice.mu.Unlock()
	app.Notice.text = text
	app.Notice.until = time.Now().Add(noticeTime)
}

func (app *App) currentNotice() (string, bool) {
	app.Notice.mu.Lock()
	defer app.Notice.mu.Unlock()
	if app.Notice.text == "" || time.Now().After(app.Notice.until) {
		return "", false
	}
	return app.Notice.text, true
}
