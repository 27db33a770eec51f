package screen

import "strings"

// Key is a logical input key. The input service maps devices onto these.
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyInteract
	KeyEscape
	KeyConfirm
	keyCount
)

var keyNames = [keyCount]string{"up", "down", "left", "right", "interact", "escape", "confirm"}

func (k Key) String() string {
	if k < keyCount {
		return keyNames[k]
	}
	return "unknown"
}

// ParseKey maps a key name (case-insensitive) to a Key.
func ParseKey(s string) (Key, bool) {
	s = strings.ToLower(s)
	for i, n := range keyNames {
		if n == s {
			return Key(i), true
		}
	}
	return 0, false
}

// Input is the set of keys held during one update, plus the set held
// during the previous update so screens can detect fresh presses.
type Input struct {
	bits uint16
	prev uint16
}

// Pressed builds an Input from keys with nothing held previously.
func Pressed(keys ...Key) Input {
	var in Input
	for _, k := range keys {
		in.bits |= 1 << k
	}
	return in
}

// Since returns in with prev recorded as the previous update's keys.
func (in Input) Since(prev Input) Input {
	return Input{bits: in.bits, prev: prev.bits}
}

// Has reports whether k is held.
func (in Input) Has(k Key) bool {
	return in.bits&(1<<k) != 0
}

// JustPressed reports whether k is held now but was not held last update.
func (in Input) JustPressed(k Key) bool {
	return in.Has(k) && in.prev&(1<<k) == 0
}

// Keys lists the held keys in declaration order.
func (in Input) Keys() []Key {
	var out []Key
	for k := Key(0); k < keyCount; k++ {
		if in.Has(k) {
			out = append(out, k)
		}
	}
	return out
}
