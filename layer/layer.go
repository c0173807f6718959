// SPDX-License-Identifier: Unlicense OR MIT

// Package layer implements the visual stacking tree that backs the
// window tree. A layer carries the bounds, transform and visibility of
// its owner; it has no rendering of its own. Layers are kept in a tree
// that usually mirrors the window tree, but the two can diverge: a
// window restack skips layers without a delegate, and a layer can
// outlive its owning window after an acquire.
package layer

import (
	"github.com/oakwm/oak/f32"
)

// Delegate paints a layer's content. The layer tree itself never
// paints; the delegate's presence marks the layer as having visual
// content, which is what restacking policies key on.
type Delegate interface {
	// LayerDamaged reports that part of the layer needs repainting,
	// in layer coordinates.
	LayerDamaged(bounds f32.Rectangle)
}

// Layer is a node in the visual stacking tree.
type Layer struct {
	parent   *Layer
	children []*Layer

	delegate Delegate

	bounds    f32.Rectangle
	transform f32.Affine2D
	visible   bool
}

// New returns a hidden layer with empty bounds and no delegate.
func New() *Layer {
	return &Layer{}
}

func (l *Layer) Parent() *Layer          { return l.parent }
func (l *Layer) Children() []*Layer      { return l.children }
func (l *Layer) Delegate() Delegate      { return l.delegate }
func (l *Layer) Bounds() f32.Rectangle   { return l.bounds }
func (l *Layer) Transform() f32.Affine2D { return l.transform }

func (l *Layer) SetDelegate(d Delegate)      { l.delegate = d }
func (l *Layer) SetBounds(b f32.Rectangle)   { l.bounds = b }
func (l *Layer) SetTransform(t f32.Affine2D) { l.transform = t }

// SetVisible sets the layer's own visibility flag. Whether the layer
// is actually drawn also depends on its ancestors; see IsDrawn.
func (l *Layer) SetVisible(visible bool) { l.visible = visible }

func (l *Layer) Visible() bool { return l.visible }

// IsDrawn reports whether the layer and all its ancestors are visible.
func (l *Layer) IsDrawn() bool {
	for p := l; p != nil; p = p.parent {
		if !p.visible {
			return false
		}
	}
	return true
}

// Add appends child to the top of l's stacking order. The child is
// removed from its previous parent first.
func (l *Layer) Add(child *Layer) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = l
	l.children = append(l.children, child)
}

// Remove detaches child from l. It is a no-op if child is not a child
// of l.
func (l *Layer) Remove(child *Layer) {
	for i, c := range l.children {
		if c == child {
			l.children = append(l.children[:i], l.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Contains reports whether other is l or a descendant of l.
func (l *Layer) Contains(other *Layer) bool {
	for p := other; p != nil; p = p.parent {
		if p == l {
			return true
		}
	}
	return false
}

// StackAtTop moves child to the top of l's stacking order.
func (l *Layer) StackAtTop(child *Layer) {
	n := len(l.children)
	if n == 0 || l.children[n-1] == child {
		return
	}
	l.StackAbove(child, l.children[n-1])
}

// StackAbove moves child directly above other in l's stacking order.
// Both must be children of l.
func (l *Layer) StackAbove(child, other *Layer) {
	if child == other {
		return
	}
	ci, oi := l.indexOf(child), l.indexOf(other)
	if ci < 0 || oi < 0 {
		return
	}
	l.children = append(l.children[:ci], l.children[ci+1:]...)
	if ci < oi {
		oi--
	}
	rest := append([]*Layer{child}, l.children[oi+1:]...)
	l.children = append(l.children[:oi+1], rest...)
}

// StackBelow moves child directly below other in l's stacking order.
func (l *Layer) StackBelow(child, other *Layer) {
	if child == other {
		return
	}
	ci, oi := l.indexOf(child), l.indexOf(other)
	if ci < 0 || oi < 0 {
		return
	}
	l.children = append(l.children[:ci], l.children[ci+1:]...)
	if ci < oi {
		oi--
	}
	rest := append([]*Layer{child}, l.children[oi:]...)
	l.children = append(l.children[:oi], rest...)
}

func (l *Layer) indexOf(child *Layer) int {
	for i, c := range l.children {
		if c == child {
			return i
		}
	}
	return -1
}
