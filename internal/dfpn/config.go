package dfpn

import "time"

// Config carries every DFPN tunable. It is a plain struct constructed
// directly by the command layer, not a config-file library.
type Config struct {
	Epsilon         float64 // the "1 + epsilon" selection parameter
	UseWidening     bool
	ExpandWidth     int // initial width
	ExpandThreshold int // visits between width increases
	UseICE          bool
	NumThreads      int
	TimeLimit       time.Duration
	MaxDepth        int // bound on the virtual-bounds table's depth axis
}

// DefaultConfig returns reasonable single-threaded defaults.
func DefaultConfig() Config {
	return Config{
		Epsilon:         0.25,
		UseWidening:     true,
		ExpandWidth:     16,
		ExpandThreshold: 1000,
		UseICE:          false,
		NumThreads:      1,
		TimeLimit:       0,
		MaxDepth:        256,
	}
}

func (c Config) widthSchedule() WidthSchedule {
	if !c.UseWidening {
		return WidthSchedule{InitialWidth: 1 << 30, ExpandThreshold: 0}
	}
	return WidthSchedule{InitialWidth: c.ExpandWidth, ExpandThreshold: c.ExpandThreshold}
}
