package vm

// Timers is the delay/sound counter pair.
type Timers struct {
	Delay byte
	Sound byte
}

// Tick decrements both counters, floored at zero.
func (t *Timers) Tick() {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}
}

// Tone reports whether the tone should be audible.
func (t *Timers) Tone() bool {
	return t.Sound > 0
}
