package engine

import (
	"fmt"

	"github.com/krill-engine/krill/engine/core"
	"github.com/krill-engine/krill/engine/gfx"
	"github.com/krill-engine/krill/engine/gfx/vulkan"
	"github.com/krill-engine/krill/engine/platform"
)

type Stage uint8

const (
	EngineStageUninitialized Stage = iota
	EngineStageInitializing
	EngineStageInitialized
	EngineStageRunning
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool
	platform     *platform.Platform
	renderer     *vulkan.Renderer
	gfxContext   *gfx.Context
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64

	stopConfigWatch func() error
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil && g.ConfigPath != "" {
		config, err := LoadConfig(g.ConfigPath)
		if err != nil {
			core.LogError(err.Error())
			return nil, err
		}
		g.ApplicationConfig = config
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultConfig("krill application")
	}
	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		platform:     p,
		isRunning:    true,
		isSuspended:  false,
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	config := e.gameInstance.ApplicationConfig
	if config.LogLevel != "" {
		core.LogSetLevel(config.LogLevel)
	}

	if !core.EventInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)
	core.EventRegister(core.EVENT_CODE_CONFIG_CHANGED, e, e.onConfigChanged)

	if e.gameInstance.ConfigPath != "" {
		closer, err := WatchConfig(e.gameInstance.ConfigPath)
		if err != nil {
			core.LogWarn("config watching disabled: %s", err)
		} else {
			e.stopConfigWatch = closer
		}
	}

	if err := e.platform.Startup(config.Name,
		config.StartPosX, config.StartPosY,
		config.StartWidth, config.StartHeight); err != nil {
		return err
	}

	e.renderer = vulkan.New(e.platform)
	if err := e.renderer.Initialize(config.Name); err != nil {
		return err
	}

	e.gfxContext = gfx.NewContext()

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e.gfxContext); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
		}
		core.ProcessEvents()

		if e.isSuspended {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := platform.GetAbsoluteTime()

		e.gfxContext.StartUpdate()
		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(e.gfxContext, delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				e.isRunning = false
				e.gfxContext.FinishUpdate()
				break
			}
		}
		frame := e.gfxContext.FinishUpdate()

		if err := e.renderer.DrawFrame(frame); err != nil {
			core.LogError("frame failed, shutting down: %s", err)
			e.isRunning = false
			break
		}

		frameElapsedTime := platform.GetAbsoluteTime() - frameStartTime
		core.MetricsUpdate(frameElapsedTime)
		e.lastTime = currentTime
	}

	return e.Shutdown()
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.stopConfigWatch != nil {
		e.stopConfigWatch()
		e.stopConfigWatch = nil
	}
	if e.renderer != nil {
		e.renderer.Shutdown()
		e.renderer = nil
	}
	if err := core.EventShutdown(); err != nil {
		return err
	}
	return e.platform.Shutdown()
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) bool {
	if context.Type == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("application quit requested, shutting down")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	if context.Type == core.EVENT_CODE_KEY_PRESSED && context.U16[0] == keyEscape {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	}
	return false
}

// glfw.KeyEscape, kept here so core stays free of windowing imports.
const keyEscape = 256

// onConfigChanged reloads the config file named by the event and applies the
// settings that can change at runtime.
func (e *Engine) onConfigChanged(context core.EventContext) bool {
	config, err := LoadConfig(context.String)
	if err != nil {
		core.LogWarn("config reload failed: %s", err)
		return true
	}
	e.gameInstance.ApplicationConfig = config
	if config.LogLevel != "" {
		core.LogSetLevel(config.LogLevel)
	}
	core.LogInfo("config reloaded from %s", context.String)
	return true
}

func (e *Engine) onResized(context core.EventContext) bool {
	width := context.U32[0]
	height := context.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("window resize: %d x %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming")
		e.isSuspended = false
	}
	e.renderer.Resized(width, height)
	if e.gameInstance.FnOnResize != nil {
		e.gameInstance.FnOnResize(width, height)
	}
	return false
}
