package vm

import (
	"sync/atomic"

	"go.creack.net/chip8/op"
)

// Keys is the keypad state. Written by the input goroutine,
// read by the cycle driver, each key is published atomically.
type Keys struct {
	state [op.KeyCount]atomic.Bool
}

// SetPressed ignores keys outside the keypad.
func (k *Keys) SetPressed(key byte, pressed bool) {
	if int(key) >= len(k.state) {
		return
	}
	k.state[key].Store(pressed)
}

func (k *Keys) IsPressed(key byte) bool {
	if int(key) >= len(k.state) {
		return false
	}
	return k.state[key].Load()
}

// FirstPressed returns the lowest pressed key.
func (k *Keys) FirstPressed() (byte, bool) {
	for i := range k.state {
		if k.state[i].Load() {
			return byte(i), true
		}
	}
	return 0, false
}

// Reset releases every key.
func (k *Keys) Reset() {
	for i := range k.state {
		k.state[i].Store(false)
	}
}
