package app

import (
	"sync"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// CameraState holds the local orbit of one viewport. Target and distance
// come from the engine every frame.
type CameraState struct {
	camera rl.Camera3D
	angleX float32
	angleY float32
	zoom   float32
}

// ViewState holds one viewport's drawing state
type ViewState struct {
	Camera CameraState

	// eyes[1] is only used in stereo mode
	eyes   [2]rl.RenderTexture2D
	eyeW   int32
	eyeH   int32
	bounds rl.Rectangle

	mu     sync.Mutex
	width  int
	height int
}

// InteractionState holds mouse state
type InteractionState struct {
	dragging bool
	dragView int
}

// NoticeState holds the message shown after a failed request
type NoticeState struct {
	mu    sync.Mutex
	text  string
	until time.Time
}

// WindowState holds fullscreen requests made by the engine
type WindowState struct {
	mu         sync.Mutex
	fullscreen bool
	request    *bool
}

// UIState holds UI-related state
type UIState struct {
	showHelp bool
}
