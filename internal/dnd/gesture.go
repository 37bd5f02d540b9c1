// Package dnd models a keyboard drag-and-drop gesture: an item is picked,
// carried across positions and then dropped or cancelled. Screens translate
// the resulting drop into a model call (a reorder, a schedule placement)
// so the models never see cursor state.
package dnd

import "errors"

// ErrAlreadyDragging is returned by Pick while another item is carried.
var ErrAlreadyDragging = errors.New("already dragging an item")

// Drop is the outcome of a completed gesture.
type Drop[K comparable, P any] struct {
	Item K
	From P
	To   P
}

// Gesture tracks one pick/move/drop cycle. The zero value is idle.
// It is owned by a single screen and is not safe for concurrent use.
type Gesture[K comparable, P any] struct {
	active bool
	item   K
	from   P
	at     P
}

// Pick starts carrying item from position at.
func (g *Gesture[K, P]) Pick(item K, at P) error {
	if g.active {
		return ErrAlreadyDragging
	}
	g.active = true
	g.item = item
	g.from = at
	g.at = at
	return nil
}

// Move updates the hover position. Ignored when idle.
func (g *Gesture[K, P]) Move(to P) {
	if g.active {
		g.at = to
	}
}

// Drop ends the gesture at the current hover position.
// ok is false when nothing was picked.
func (g *Gesture[K, P]) Drop() (Drop[K, P], bool) {
	if !g.active {
		return Drop[K, P]{}, false
	}
	d := Drop[K, P]{Item: g.item, From: g.from, To: g.at}
	g.reset()
	return d, true
}

// Cancel abandons the gesture without a drop.
func (g *Gesture[K, P]) Cancel() {
	g.reset()
}

func (g *Gesture[K, P]) reset() {
	var zeroK K
	var zeroP P
	g.active = false
	g.item = zeroK
	g.from = zeroP
	g.at = zeroP
}

func (g *Gesture[K, P]) Active() bool { return g.active }
func (g *Gesture[K, P]) Item() K      { return g.item }
func (g *Gesture[K, P]) Origin() P    { return g.from }
func (g *Gesture[K, P]) Position() P  { return g.at }
