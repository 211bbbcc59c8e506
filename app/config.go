// Package app wires World, Scheduler, Events, Resources, and the plugin
// lifecycle into the single owning object that drives the main loop from a
// host frame callback (spec.md §4.4-4.6, §6 "External Interfaces").
package app

// Surface is the drawing surface collaborators render into. The core only
// needs its pixel size; surface creation and presentation are out of
// scope (spec.md §6).
type Surface interface {
	Size() (width, height int)
}

// FilesystemAdapter is the minimal filesystem interface the core consumes;
// its implementation is an external collaborator (spec.md §6).
type FilesystemAdapter interface {
	ReadText(path string) (string, error)
	ReadBytes(path string) ([]byte, error)
	Write(path string, data []byte) error
	Exists(path string) bool
	ListDirectory(path string) ([]string, error)
	MakeDirectory(path string) error
	Delete(path string) error
}

// Vec2 is a plain 2D vector, used here for the gravity config option.
type Vec2 struct {
	X, Y float64
}

// Config is the DefaultPlugin-equivalent set of recognized configuration
// options (spec.md §6 "Configuration surface").
type Config struct {
	Surface           Surface
	Container         any // element to receive input focus; implementation-defined
	Gravity           Vec2
	FilesystemAdapter FilesystemAdapter
}

// DefaultConfig returns a configuration with no surface, no container and
// no filesystem adapter, and Gravity set to {X: 0, Y: 9.8}. Callers supply
// the collaborators they have.
func DefaultConfig() Config {
	return Config{Gravity: Vec2{X: 0, Y: 9.8}}
}
