package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

var (
	// ErrNilDeviceHandle is returned when a nil DeviceHandle is passed.
	ErrNilDeviceHandle = errors.New("render: nil device handle")

	// ErrNoTextureCreator is returned when the host device exposes no
	// texture creation capability.
	ErrNoTextureCreator = errors.New("render: device handle has no texture creator")
)

// NewDeviceTextureFactory returns a TextureFactory backed by the host's
// shared GPU device. Texture creation goes through the gpucontext
// capability interfaces: the provider itself, or the device it exposes,
// must implement gpucontext.TextureCreator.
//
// Hosts upload RGBA data only, so single-channel mask pixels are
// expanded on upload. The mask value lands in every channel; shaders
// may sample any of them.
func NewDeviceTextureFactory(handle DeviceHandle) (TextureFactory, error) {
	if handle == nil {
		return nil, ErrNilDeviceHandle
	}
	creator, ok := resolveTextureCreator(handle)
	if !ok {
		return nil, ErrNoTextureCreator
	}
	return &deviceTextureFactory{handle: handle, creator: creator}, nil
}

// resolveTextureCreator finds the host's texture creation capability.
// Hosts implement gpucontext.TextureCreator either on the provider
// itself or on the device it exposes.
func resolveTextureCreator(handle DeviceHandle) (gpucontext.TextureCreator, bool) {
	if c, ok := handle.(gpucontext.TextureCreator); ok {
		return c, true
	}
	if c, ok := handle.Device().(gpucontext.TextureCreator); ok {
		return c, true
	}
	return nil, false
}

type deviceTextureFactory struct {
	handle  DeviceHandle
	creator gpucontext.TextureCreator
}

func (f *deviceTextureFactory) CreateTexture(desc TextureDescriptor) (Texture, error) {
	w := int(desc.Width)
	h := int(desc.Height)
	tex, err := f.creator.NewTextureFromRGBA(w, h, make([]byte, w*h*4))
	if err != nil {
		return nil, fmt.Errorf("render: device texture %q: %w", desc.Label, err)
	}
	return &deviceTexture{tex: tex}, nil
}

// deviceTexture adapts a gpucontext host texture to the Texture
// interface consumed by targets.
type deviceTexture struct {
	tex gpucontext.Texture
}

func (t *deviceTexture) Width() uint32  { return uint32(max(t.tex.Width(), 0)) }  // #nosec G115
func (t *deviceTexture) Height() uint32 { return uint32(max(t.tex.Height(), 0)) } // #nosec G115

func (t *deviceTexture) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Upload expands single-channel mask pixels into RGBA and hands them to
// the host through gpucontext.TextureUpdater.
func (t *deviceTexture) Upload(data []byte) error {
	updater, ok := t.tex.(gpucontext.TextureUpdater)
	if !ok {
		return errors.New("render: host texture is not updatable")
	}
	w := t.tex.Width()
	h := t.tex.Height()
	if len(data) != w*h {
		return fmt.Errorf("render: upload size mismatch: want %d, got %d", w*h, len(data))
	}
	rgba := make([]byte, len(data)*4)
	for i, v := range data {
		rgba[i*4+0] = v
		rgba[i*4+1] = v
		rgba[i*4+2] = v
		rgba[i*4+3] = v
	}
	return updater.UpdateData(rgba)
}

func (t *deviceTexture) Destroy() {
	if d, ok := t.tex.(interface{ Destroy() }); ok {
		d.Destroy()
	}
}
