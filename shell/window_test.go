// SPDX-License-Identifier: Unlicense OR MIT

package shell

import (
	"testing"

	"github.com/oakwm/oak/f32"
)

func TestContainsPoint(t *testing.T) {
	w := NewWindow(&recordDelegate{})
	w.SetBoundsDirect(f32.Rect(10, 10, 110, 60))

	if !w.ContainsPoint(f32.Pt(0, 0)) {
		t.Error("origin should be inside")
	}
	if !w.ContainsPoint(f32.Pt(99, 49)) {
		t.Error("(99,49) should be inside")
	}
	if w.ContainsPoint(f32.Pt(100, 50)) {
		t.Error("max corner is exclusive")
	}
	if w.ContainsPoint(f32.Pt(-1, 0)) {
		t.Error("negative point should be outside")
	}
}

func TestConvertPoint(t *testing.T) {
	root, _, _ := newTestRoot()
	w1 := addWindow(root.Window(), &recordDelegate{name: "w1"}, f32.Rect(10, 10, 300, 300))
	w11 := addWindow(w1, &recordDelegate{name: "w11"}, f32.Rect(5, 5, 100, 100))

	got := ConvertPoint(root.Window(), w11, f32.Pt(100, 100))
	if got != f32.Pt(85, 85) {
		t.Errorf("root->w11 = %v, want (85,85)", got)
	}
	back := ConvertPoint(w11, root.Window(), got)
	if back != f32.Pt(100, 100) {
		t.Errorf("w11->root = %v, want (100,100)", back)
	}
	if p := ConvertPoint(w11, w11, f32.Pt(3, 4)); p != f32.Pt(3, 4) {
		t.Errorf("identity conversion = %v", p)
	}
}

func TestGetEventHandlerForPoint(t *testing.T) {
	root, _, _ := newTestRoot()
	w1 := addWindow(root.Window(), &recordDelegate{name: "w1"}, f32.Rect(10, 10, 510, 510))
	w11 := addWindow(w1, &recordDelegate{name: "w11"}, f32.Rect(5, 5, 105, 105))
	w111 := addWindow(w11, &recordDelegate{name: "w111"}, f32.Rect(5, 5, 55, 55))

	cases := []struct {
		pt   f32.Point
		want *Window
	}{
		{f32.Pt(5, 5), nil}, // root window has no delegate
		{f32.Pt(11, 11), w1},
		{f32.Pt(16, 16), w11},
		{f32.Pt(21, 21), w111},
	}
	for _, c := range cases {
		if got := root.Window().GetEventHandlerForPoint(c.pt); got != c.want {
			t.Errorf("handler at %v = %v, want %v", c.pt, got, c.want)
		}
	}
}

func TestStopsEventPropagationMasks(t *testing.T) {
	root, _, _ := newTestRoot()
	w1 := addWindow(root.Window(), &recordDelegate{name: "w1"}, f32.Rect(10, 10, 210, 210))
	w11 := addWindow(w1, &recordDelegate{name: "w11"}, f32.Rect(5, 5, 105, 105))
	// A delegate-less modal container stacked over w11. The flag only
	// bites while the container has a visible child.
	w12 := addWindow(w1, nil, f32.Rect(0, 0, 150, 150))
	w12.SetStopsEventPropagation(true)
	if w12.StopsEventPropagation() {
		t.Fatal("childless stopping window should not block")
	}
	addWindow(w12, nil, f32.Rect(200, 200, 210, 210))

	// The point is over w11, but the stopping container masks it and,
	// matching nothing itself, hands the event to its parent.
	if got := root.Window().GetEventHandlerForPoint(f32.Pt(50, 50)); got != w1 {
		t.Errorf("handler = %v, want %v", got, w1)
	}
	if w11.CanReceiveEvents() {
		t.Error("window behind a stopping sibling should not receive events")
	}
	if w11.CanFocus() {
		t.Error("window behind a stopping sibling should not be focusable")
	}
	if !w12.CanReceiveEvents() {
		t.Error("the stopping window itself stays eligible")
	}
}

func TestSetIgnoreEventsSkipsWindow(t *testing.T) {
	root, _, _ := newTestRoot()
	below := addWindow(root.Window(), &recordDelegate{name: "below"}, f32.Rect(0, 0, 100, 100))
	above := addWindow(root.Window(), &recordDelegate{name: "above"}, f32.Rect(0, 0, 100, 100))

	if got := root.Window().GetEventHandlerForPoint(f32.Pt(50, 50)); got != above {
		t.Fatalf("handler = %v, want %v", got, above)
	}
	above.SetIgnoreEvents(true)
	if got := root.Window().GetEventHandlerForPoint(f32.Pt(50, 50)); got != below {
		t.Errorf("handler = %v, want %v", got, below)
	}
}

func TestTransparentComponentFallsThrough(t *testing.T) {
	root, _, _ := newTestRoot()
	below := addWindow(root.Window(), &recordDelegate{name: "below"}, f32.Rect(0, 0, 100, 100))
	d := &recordDelegate{name: "above", component: ComponentTransparent}
	addWindow(root.Window(), d, f32.Rect(0, 0, 100, 100))

	if got := root.Window().GetEventHandlerForPoint(f32.Pt(50, 50)); got != below {
		t.Errorf("handler = %v, want %v", got, below)
	}
}

func TestStackChildAtTop(t *testing.T) {
	root, _, _ := newTestRoot()
	parent := root.Window()
	a := addWindow(parent, &recordDelegate{name: "a"}, f32.Rect(0, 0, 10, 10))
	b := addWindow(parent, &recordDelegate{name: "b"}, f32.Rect(0, 0, 10, 10))
	c := addWindow(parent, &recordDelegate{name: "c"}, f32.Rect(0, 0, 10, 10))

	parent.StackChildAtTop(a)
	if got := parent.Children(); got[0] != b || got[1] != c || got[2] != a {
		t.Errorf("order = %v, want [b c a]", got)
	}
	// Already on top, a no-op.
	parent.StackChildAtTop(a)
	if got := parent.Children(); got[2] != a {
		t.Errorf("order changed on no-op restack: %v", got)
	}
}

func checkStackOrder(t *testing.T, parent *Window, want ...*Window) {
	t.Helper()
	got := parent.Children()
	if len(got) != len(want) {
		t.Fatalf("child count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children[%d] = %s, want %s", i, got[i].Name(), want[i].Name())
		}
	}
	layers := parent.Layer().Children()
	for i := range want {
		if layers[i] != want[i].Layer() {
			t.Fatalf("layers[%d] belongs to the wrong window, want %s", i, want[i].Name())
		}
	}
}

func TestStackChildAboveOrdering(t *testing.T) {
	root, _, _ := newTestRoot()
	parent := root.Window()
	w1 := addWindow(parent, &recordDelegate{name: "w1"}, f32.Rect(0, 0, 10, 10))
	w2 := addWindow(parent, &recordDelegate{name: "w2"}, f32.Rect(0, 0, 10, 10))
	w3 := addWindow(parent, &recordDelegate{name: "w3"}, f32.Rect(0, 0, 10, 10))

	parent.StackChildAbove(w1, w2)
	checkStackOrder(t, parent, w2, w1, w3)
	parent.StackChildAbove(w1, w3)
	checkStackOrder(t, parent, w2, w3, w1)
	parent.StackChildAbove(w1, w2)
	checkStackOrder(t, parent, w2, w1, w3)
	parent.StackChildAbove(w3, w2)
	checkStackOrder(t, parent, w2, w3, w1)
	// w3 already sits directly above w2, a no-op.
	parent.StackChildAbove(w3, w2)
	checkStackOrder(t, parent, w2, w3, w1)
}

func TestStackChildAboveUndelegatedTargetLayerStays(t *testing.T) {
	root, _, _ := newTestRoot()
	parent := root.Window()
	w1 := addWindow(parent, &recordDelegate{name: "w1"}, f32.Rect(0, 0, 10, 10))
	w2 := addWindow(parent, &recordDelegate{name: "w2"}, f32.Rect(0, 0, 10, 10))

	// Both the window and its layer move.
	parent.StackChildAbove(w1, w2)
	checkStackOrder(t, parent, w2, w1)

	// With w1's layer released to an animation controller, w2 still
	// moves in the child list but the layers keep their order.
	w1.Layer().SetDelegate(nil)
	parent.StackChildAbove(w2, w1)
	if got := parent.Children(); got[0] != w1 || got[1] != w2 {
		t.Errorf("order = [%s %s], want [w1 w2]", got[0].Name(), got[1].Name())
	}
	layers := parent.Layer().Children()
	if layers[0] != w2.Layer() || layers[1] != w1.Layer() {
		t.Errorf("layer order changed despite undelegated target")
	}
}

func TestAcquireLayerOutlivesWindow(t *testing.T) {
	root, _, _ := newTestRoot()
	parent := root.Window()
	w1 := addWindow(parent, &recordDelegate{name: "w1"}, f32.Rect(0, 0, 10, 10))
	w2 := addWindow(parent, &recordDelegate{name: "w2"}, f32.Rect(0, 0, 10, 10))
	if got := len(parent.Layer().Children()); got != 2 {
		t.Fatalf("layer children = %d, want 2", got)
	}

	acquired := w1.AcquireLayer()
	if acquired != w1.Layer() {
		t.Fatalf("window stopped using its layer at acquisition")
	}
	if acquired.Delegate() == nil {
		t.Fatalf("layer delegate cleared at acquisition")
	}

	w2.Destroy()
	w1.Destroy()
	// The acquired layer survives its window; destruction only severs
	// the delegate.
	if got := len(parent.Layer().Children()); got != 1 {
		t.Errorf("layer children = %d, want the acquired layer to remain", got)
	}
	if acquired.Delegate() != nil {
		t.Errorf("layer delegate still set after window destruction")
	}
}

func TestStackingRegroupsTransients(t *testing.T) {
	root, _, _ := newTestRoot()
	parent := root.Window()
	a := addWindow(parent, &recordDelegate{name: "a"}, f32.Rect(0, 0, 10, 10))
	tr := addWindow(parent, &recordDelegate{name: "tr"}, f32.Rect(0, 0, 10, 10))
	b := addWindow(parent, &recordDelegate{name: "b"}, f32.Rect(0, 0, 10, 10))
	a.AddTransientChild(tr)

	parent.StackChildAtTop(a)
	if got := parent.Children(); got[0] != b || got[1] != a || got[2] != tr {
		t.Errorf("order = %v, want [b a tr]", got)
	}
}

func TestStackingChangedObserver(t *testing.T) {
	root, _, _ := newTestRoot()
	parent := root.Window()
	a := addWindow(parent, &recordDelegate{name: "a"}, f32.Rect(0, 0, 10, 10))
	addWindow(parent, &recordDelegate{name: "b"}, f32.Rect(0, 0, 10, 10))

	var restacks int
	sub := a.Observe(WindowObserver{
		StackingChanged: func(*Window) { restacks++ },
	})
	defer sub.Close()

	parent.StackChildAtTop(a)
	if restacks != 1 {
		t.Errorf("restacks = %d, want 1", restacks)
	}
}

func TestDestroyCascades(t *testing.T) {
	root, _, _ := newTestRoot()
	dp := &recordDelegate{name: "p"}
	dc := &recordDelegate{name: "c"}
	dt := &recordDelegate{name: "t"}
	p := addWindow(root.Window(), dp, f32.Rect(0, 0, 100, 100))
	c := addWindow(p, dc, f32.Rect(0, 0, 50, 50))
	tr := addWindow(root.Window(), dt, f32.Rect(0, 0, 50, 50))
	p.AddTransientChild(tr)

	var destroying, destroyed int
	p.Observe(WindowObserver{
		Destroying: func(*Window) { destroying++ },
		Destroyed:  func(*Window) { destroyed++ },
	})

	p.Destroy()

	for _, d := range []*recordDelegate{dp, dc, dt} {
		if !d.destroyingSeen || !d.destroyedSeen {
			t.Errorf("%s: destroying=%v destroyed=%v", d.name, d.destroyingSeen, d.destroyedSeen)
		}
	}
	if destroying != 1 || destroyed != 1 {
		t.Errorf("observer calls = %d/%d, want 1/1", destroying, destroyed)
	}
	if len(root.Window().Children()) != 0 {
		t.Errorf("root window still has %d children", len(root.Window().Children()))
	}
	if c.Parent() != nil || tr.TransientParent() != nil {
		t.Error("teardown left stale links")
	}
}

func TestRemoveTransientChildIdempotent(t *testing.T) {
	root, _, _ := newTestRoot()
	p := addWindow(root.Window(), &recordDelegate{name: "p"}, f32.Rect(0, 0, 100, 100))
	tr := addWindow(root.Window(), &recordDelegate{name: "tr"}, f32.Rect(0, 0, 50, 50))
	p.AddTransientChild(tr)

	p.RemoveTransientChild(tr)
	if tr.TransientParent() != nil {
		t.Error("transient parent not cleared")
	}
	p.RemoveTransientChild(tr) // no-op
	if len(p.TransientChildren()) != 0 {
		t.Error("transient child list not empty")
	}
}

func TestProperties(t *testing.T) {
	w := NewWindow(nil)
	var changed []string
	w.Observe(WindowObserver{
		PropertyChanged: func(_ *Window, key string) { changed = append(changed, key) },
	})

	w.SetProperty("modal", true)
	if got := w.Property("modal"); got != true {
		t.Errorf("Property(modal) = %v", got)
	}
	w.SetProperty("modal", nil)
	if got := w.Property("modal"); got != nil {
		t.Errorf("deleted property still present: %v", got)
	}
	if w.Property("missing") != nil {
		t.Error("missing property should be nil")
	}
	if len(changed) != 2 {
		t.Errorf("PropertyChanged calls = %d, want 2", len(changed))
	}
}

func TestSubscriptionCloseIdempotent(t *testing.T) {
	w := NewWindow(nil)
	var calls int
	sub := w.Observe(WindowObserver{
		PropertyChanged: func(*Window, string) { calls++ },
	})
	w.SetProperty("k", 1)
	sub.Close()
	sub.Close()
	w.SetProperty("k", 2)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestVisibilityIsRecursive(t *testing.T) {
	root, _, _ := newTestRoot()
	p := addWindow(root.Window(), &recordDelegate{name: "p"}, f32.Rect(0, 0, 100, 100))
	c := addWindow(p, &recordDelegate{name: "c"}, f32.Rect(0, 0, 50, 50))

	p.Hide()
	if !c.Visible() {
		t.Error("child's own flag should be unchanged")
	}
	if c.IsVisible() {
		t.Error("child under a hidden parent is not visible")
	}
	if root.Window().GetEventHandlerForPoint(f32.Pt(10, 10)) != nil {
		t.Error("hidden subtree matched a point")
	}
}

func TestVisibilityCallbacksCarryDrawnState(t *testing.T) {
	root, _, _ := newTestRoot()
	d := &recordDelegate{name: "c"}
	p := addWindow(root.Window(), &recordDelegate{name: "p"}, f32.Rect(0, 0, 200, 200))
	c := addWindow(p, d, f32.Rect(0, 0, 100, 100))

	var visible, drawn []bool
	sub := c.Observe(WindowObserver{
		VisibilityChanged: func(_ *Window, v, dr bool) {
			visible = append(visible, v)
			drawn = append(drawn, dr)
		},
	})
	defer sub.Close()

	// Showing under a hidden ancestor flips the flag without the
	// window becoming drawn.
	p.Hide()
	c.Hide()
	c.Show()
	p.Show()
	c.Hide()
	c.Show()

	wantVisible := []bool{false, true, false, true}
	wantDrawn := []bool{false, false, false, true}
	if len(visible) != len(wantVisible) {
		t.Fatalf("callbacks = %d, want %d", len(visible), len(wantVisible))
	}
	for i := range wantVisible {
		if visible[i] != wantVisible[i] || drawn[i] != wantDrawn[i] {
			t.Fatalf("callback %d = (%t, %t), want (%t, %t)",
				i, visible[i], drawn[i], wantVisible[i], wantDrawn[i])
		}
	}
	// The delegate also saw the initial Show.
	wantDelegate := []bool{true, false, true, false, true}
	if len(d.visibility) != len(wantDelegate) {
		t.Fatalf("delegate visibility = %v, want %v", d.visibility, wantDelegate)
	}
	for i := range wantDelegate {
		if d.visibility[i] != wantDelegate[i] {
			t.Fatalf("delegate visibility = %v, want %v", d.visibility, wantDelegate)
		}
	}
}

func TestGetBoundsInRootWithTransform(t *testing.T) {
	root, _, _ := newTestRoot()
	w := addWindow(root.Window(), &recordDelegate{name: "w"}, f32.Rect(10, 20, 110, 70))
	w.SetTransform(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(2, 2)))

	got := w.GetBoundsInRoot()
	want := f32.Rect(10, 20, 210, 120)
	if got != want {
		t.Errorf("GetBoundsInRoot = %v, want %v", got, want)
	}
}

func TestMinSizeLayoutClamps(t *testing.T) {
	root, _, _ := newTestRoot()
	p := addWindow(root.Window(), &recordDelegate{name: "p"}, f32.Rect(0, 0, 400, 400))
	p.SetLayoutManager(MinSizeLayout{})
	c := addWindow(p, &recordDelegate{name: "c", minSize: f32.Pt(50, 50)}, f32.Rect(0, 0, 100, 100))

	c.SetBounds(f32.Rect(10, 10, 20, 20))
	if got := c.Bounds(); got != f32.Rect(10, 10, 60, 60) {
		t.Errorf("bounds = %v, want (10,10,60,60)", got)
	}
	c.SetBounds(f32.Rect(0, 0, 200, 80))
	if got := c.Bounds(); got != f32.Rect(0, 0, 200, 80) {
		t.Errorf("bounds = %v, want (0,0,200,80)", got)
	}
}

func TestFillLayoutTracksParent(t *testing.T) {
	root, _, _ := newTestRoot()
	p := addWindow(root.Window(), &recordDelegate{name: "p"}, f32.Rect(0, 0, 100, 100))
	p.SetLayoutManager(FillLayout{Owner: p})
	c := addWindow(p, &recordDelegate{name: "c"}, f32.Rect(0, 0, 1, 1))

	if got := c.Bounds(); got != f32.Rect(0, 0, 100, 100) {
		t.Fatalf("bounds after add = %v", got)
	}
	p.SetBoundsDirect(f32.Rect(0, 0, 250, 150))
	if got := c.Bounds(); got != f32.Rect(0, 0, 250, 150) {
		t.Errorf("bounds after resize = %v", got)
	}
}

func TestGetChildByID(t *testing.T) {
	root, _, _ := newTestRoot()
	p := addWindow(root.Window(), &recordDelegate{name: "p"}, f32.Rect(0, 0, 100, 100))
	c := addWindow(p, &recordDelegate{name: "c"}, f32.Rect(0, 0, 50, 50))
	c.SetID(7)

	if got := root.Window().GetChildByID(7); got != c {
		t.Errorf("GetChildByID(7) = %v, want %v", got, c)
	}
	if got := root.Window().GetChildByID(99); got != nil {
		t.Errorf("GetChildByID(99) = %v, want nil", got)
	}
}

func TestContainsAndToplevel(t *testing.T) {
	root, _, _ := newTestRoot()
	top := addWindow(root.Window(), &recordDelegate{name: "top"}, f32.Rect(0, 0, 100, 100))
	inner := addWindow(top, &recordDelegate{name: "inner"}, f32.Rect(0, 0, 50, 50))

	if !top.Contains(inner) || !top.Contains(top) {
		t.Error("Contains should cover descendants and self")
	}
	if inner.Contains(top) {
		t.Error("Contains is not symmetric")
	}
	if got := inner.GetToplevel(); got != top {
		t.Errorf("GetToplevel = %v, want %v", got, top)
	}
}
