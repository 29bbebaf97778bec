package engine

import (
	"github.com/krill-engine/krill/engine/gfx"
)

// Game wires application callbacks into the engine loop. FnInitialize runs
// once after the renderer is up; FnUpdate records one frame through the
// graphics context every iteration.
type Game struct {
	ApplicationConfig *ApplicationConfig

	// ConfigPath names a TOML config file. When set and ApplicationConfig
	// is nil the engine loads it at startup and watches it for changes.
	ConfigPath string

	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnOnResize   OnResize
}

type Initialize func(ctx *gfx.Context) error
type Update func(ctx *gfx.Context, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
