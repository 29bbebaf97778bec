package gfx

import (
	"image"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

type textureResource struct {
	id      ResourceID
	width   uint32
	height  uint32
	format  PixelFormat
	traceID uuid.UUID
}

// Texture2D is a persistent sampled texture handle.
type Texture2D struct {
	res *textureResource
}

func (t *Texture2D) ID() ResourceID {
	return t.res.id
}

func (t *Texture2D) Extent() (uint32, uint32) {
	return t.res.width, t.res.height
}

func (t *Texture2D) Format() PixelFormat {
	return t.res.format
}

// SamplerWrapMode selects texture addressing outside [0,1].
type SamplerWrapMode uint8

const (
	SamplerWrapRepeat SamplerWrapMode = iota
	SamplerWrapExtend
	SamplerWrapMirror
)

type SamplerDefinition struct {
	WrapMode  SamplerWrapMode
	MinLinear bool
	MagLinear bool
}

type samplerResource struct {
	id      ResourceID
	def     SamplerDefinition
	traceID uuid.UUID
}

// Sampler is a persistent sampler handle.
type Sampler struct {
	res *samplerResource
}

func (s *Sampler) ID() ResourceID {
	return s.res.id
}

// FramebufferFormat selects the color storage of an off-screen target. Each
// declared format gets its own pipeline variant.
type FramebufferFormat uint8

const (
	FramebufferRGBA8 FramebufferFormat = iota
	FramebufferRGBA16F

	// FramebufferFormatCount is the number of off-screen formats; the
	// swapchain format variant is stored one index past these.
	FramebufferFormatCount
)

type framebufferResource struct {
	id      ResourceID
	width   uint32
	height  uint32
	format  FramebufferFormat
	traceID uuid.UUID
}

// Framebuffer is an off-screen render target with a color and depth image.
// Its color image can be sampled through FramebufferColorRef once the pass
// writing it has ended.
type Framebuffer struct {
	res *framebufferResource
}

func (f *Framebuffer) ID() ResourceID {
	return f.res.id
}

func (f *Framebuffer) Extent() (uint32, uint32) {
	return f.res.width, f.res.height
}

func (f *Framebuffer) Format() FramebufferFormat {
	return f.res.format
}

// Canvas returns the identifier used to target this framebuffer in SetCanvas.
func (f *Framebuffer) Canvas() CanvasID {
	return CanvasID{framebuffer: f.res.id}
}

// CanvasID addresses a render target: the window surface or an off-screen
// framebuffer.
type CanvasID struct {
	screen      bool
	framebuffer ResourceID
}

func (c CanvasID) IsScreen() bool {
	return c.screen
}

func (c CanvasID) Framebuffer() ResourceID {
	return c.framebuffer
}

// Color is a normalized RGBA clear color.
type Color struct {
	R, G, B, A float32
}

// PixelsFromImage converts any image into tightly packed RGBA8 bytes at the
// requested extent, scaling with a bilinear kernel when sizes differ.
func PixelsFromImage(img image.Image, width, height uint32) []byte {
	dst := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	if b := img.Bounds(); uint32(b.Dx()) == width && uint32(b.Dy()) == height {
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	} else {
		xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	}
	return dst.Pix
}
