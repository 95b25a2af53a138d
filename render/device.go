package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (a canvas framework, a game engine) implements DeviceHandle
// and passes it to the pipeline, allowing mask textures to live on the
// shared GPU device. regionfx never creates a device of its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, keeping full
// compatibility with the gpucontext ecosystem under a package-local name.
type DeviceHandle = gpucontext.DeviceProvider

// TextureDescriptor describes parameters for creating a mask texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat
}

// MaskTextureDescriptor returns the descriptor used for alpha mask and
// SDF textures: single-channel, no mipmaps, no multisampling.
func MaskTextureDescriptor(label string, width, height int) TextureDescriptor {
	return TextureDescriptor{
		Label:  label,
		Width:  uint32(width),  // #nosec G115 -- dimensions validated by callers
		Height: uint32(height), // #nosec G115
		Format: gputypes.TextureFormatR8Unorm,
	}
}

// Texture represents a GPU texture resource owned by the host backend.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Upload copies CPU pixel data into the texture. The data length
	// must match width*height*bytes-per-pixel for the format.
	Upload(data []byte) error

	// Destroy releases GPU resources associated with this texture.
	Destroy()
}

// TextureFactory is implemented by hosts that can allocate GPU textures
// for the pipeline. When no factory is configured, targets stay
// CPU-only and effect renderers read mask pixels directly.
type TextureFactory interface {
	// CreateTexture allocates a texture matching the descriptor.
	CreateTexture(desc TextureDescriptor) (Texture, error)
}
