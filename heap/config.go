package heap

import (
	"log/slog"

	"github.com/joshuapare/espgc/heap/arena"
	"github.com/joshuapare/espgc/internal/format"
	"github.com/joshuapare/espgc/value"
)

// Mode selects the kind of collection.
type Mode uint8

const (
	// Major whitens every object, marks from roots and reclaims the rest.
	Major Mode = iota
	// Minor keeps earlier survivors and rescans dirty objects only.
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "minor"
	}
	return "major"
}

// Finalizer is called before an object with off-arena resources is
// reclaimed. attached is whatever Attach stored for it, or nil.
type Finalizer func(ref value.Ref, typ value.Type, attached any) error

// Config controls heap geometry and hooks. Zero fields take defaults.
type Config struct {
	ArenaCells int           // Cells per arena. Default: format.DefaultArenaCells
	MaxArenas  int           // Upper bound on arenas. Default: value.MaxArenas
	Backing    arena.Backing // Arena memory source. Default: arena.BackingPages
	Logger     *slog.Logger  // Default: logger.L
	Tracer     Tracer        // Child enumeration. Default: TraceSlots
	Finalize   Finalizer     // Optional
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ArenaCells: format.DefaultArenaCells,
		MaxArenas:  value.MaxArenas,
		Backing:    arena.BackingPages,
		Tracer:     TraceSlots,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ArenaCells == 0 {
		c.ArenaCells = d.ArenaCells
	}
	if c.MaxArenas == 0 {
		c.MaxArenas = d.MaxArenas
	}
	if c.Tracer == nil {
		c.Tracer = d.Tracer
	}
	return c
}
