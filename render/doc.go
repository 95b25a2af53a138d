// Package render provides the render-target abstraction and pooling the
// mask pipeline draws into.
//
// A Target is a CPU-addressable render texture with a GPU texture format
// tag; hosts that upload masks to the GPU attach their own Texture handle
// through the device integration interfaces in device.go. The Pool
// recycles targets by (width, height, resolution) bucket so per-frame
// mask rebuilds do not allocate.
//
// Key principle: this package RECEIVES a device from the host through
// DeviceHandle, it never creates one. All GPU submission happens in the
// host's backend; regionfx only manages texture lifetime and content.
package render
