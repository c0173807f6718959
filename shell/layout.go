// SPDX-License-Identifier: Unlicense OR MIT

package shell

import "github.com/oakwm/oak/f32"

// MinSizeLayout is a LayoutManager that applies bounds requests
// unchanged except for clamping each dimension to the child
// delegate's minimum size.
type MinSizeLayout struct{}

func (MinSizeLayout) OnWindowResized()        {}
func (MinSizeLayout) OnWindowAdded(*Window)   {}
func (MinSizeLayout) OnWindowRemoved(*Window) {}

func (MinSizeLayout) SetChildBounds(child *Window, requested f32.Rectangle) {
	if d := child.Delegate(); d != nil {
		min := d.GetMinimumSize()
		if requested.Dx() < min.X {
			requested.Max.X = requested.Min.X + min.X
		}
		if requested.Dy() < min.Y {
			requested.Max.Y = requested.Min.Y + min.Y
		}
	}
	child.SetBoundsDirect(requested)
}

// FillLayout keeps every child sized to its parent's local bounds,
// for container windows that host a single content window.
type FillLayout struct {
	Owner *Window
}

func (l FillLayout) OnWindowResized() {
	for _, c := range l.Owner.Children() {
		b := l.Owner.Bounds()
		c.SetBoundsDirect(f32.Rect(0, 0, b.Dx(), b.Dy()))
	}
}

func (l FillLayout) OnWindowAdded(child *Window) {
	b := l.Owner.Bounds()
	child.SetBoundsDirect(f32.Rect(0, 0, b.Dx(), b.Dy()))
}

func (FillLayout) OnWindowRemoved(*Window) {}

func (FillLayout) SetChildBounds(child *Window, requested f32.Rectangle) {
	child.SetBoundsDirect(requested)
}
