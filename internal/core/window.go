package core

import (
	"errors"
	"fmt"
)

// ErrUnknownWindow is returned by ParseWindow for anything but 7d, 30d or all.
var ErrUnknownWindow = errors.New("unknown window")

// Window is the time-range filter applied to orders and expenses before aggregation.
type Window string

const (
	Window7d  Window = "7d"
	Window30d Window = "30d"
	WindowAll Window = "all"
)

// DefaultWindow is the dashboard's initial selection.
const DefaultWindow = Window30d

// ParseWindow validates s. An empty string selects DefaultWindow.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case Window7d, Window30d, WindowAll:
		return w, nil
	case "":
		return DefaultWindow, nil
	default:
		return "", fmt.Errorf("%w: %q (want 7d, 30d or all)", ErrUnknownWindow, s)
	}
}

// Days is the number of days before today covered by the window; zero for WindowAll.
func (w Window) Days() int {
	switch w {
	case Window7d:
		return 7
	case Window30d:
		return 30
	default:
		return 0
	}
}

// Bounded reports whether the window has a finite lower bound.
func (w Window) Bounded() bool {
	return w.Days() > 0
}

// LowerBound returns the first day included by the window. ok is false for
// WindowAll, which includes every date.
func (w Window) LowerBound(today Date) (from Date, ok bool) {
	if !w.Bounded() {
		return Date{}, false
	}
	return today.AddDays(-w.Days()), true
}

// Contains reports whether d falls inside the window ending on today.
// There is no upper bound: dates after today are always included.
func (w Window) Contains(d, today Date) bool {
	from, ok := w.LowerBound(today)
	if !ok {
		return true
	}
	return !d.Before(from)
}
