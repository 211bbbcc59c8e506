package render

import "github.com/pdcamargo/atlas-engine/gpu"

// newTestDevice returns a device suitable for render package unit tests
// that don't care about logging.
func newTestDevice() *gpu.Device {
	return gpu.New(nil)
}
