package access

import "sync/atomic"

// Flag reports whether secure links are enabled installation-wide.
type Flag interface {
	Enabled() bool
}

// Toggle is a Flag that can be flipped at runtime.
type Toggle struct {
	enabled atomic.Bool
}

// NewToggle returns a Toggle in the given state.
func NewToggle(enabled bool) *Toggle {
	t := &Toggle{}
	t.enabled.Store(enabled)
	return t
}

func (t *Toggle) Enabled() bool {
	return t.enabled.Load()
}

func (t *Toggle) Set(enabled bool) {
	t.enabled.Store(enabled)
}
