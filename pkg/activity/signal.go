package activity

import "time"

// Kind names the input event a signal was derived from.
type Kind string

const (
	PointerDown Kind = "pointerdown"
	PointerMove Kind = "pointermove"
	KeyPress    Kind = "keypress"
	Scroll      Kind = "scroll"
	TouchStart  Kind = "touchstart"
	Click       Kind = "click"
)

// Kinds lists every qualifying kind.
var Kinds = []Kind{PointerDown, PointerMove, KeyPress, Scroll, TouchStart, Click}

// Qualifies reports whether the kind counts as user activity.
func (k Kind) Qualifies() bool {
	switch k {
	case PointerDown, PointerMove, KeyPress, Scroll, TouchStart, Click:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Signal is a single observation of user activity.
type Signal struct {
	Kind Kind
	At   time.Time
}
