// SPDX-License-Identifier: Unlicense OR MIT

package layer

import "testing"

func names(layers []*Layer, tags map[*Layer]string) []string {
	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = tags[l]
	}
	return out
}

func wantOrder(t *testing.T, parent *Layer, tags map[*Layer]string, want ...string) {
	t.Helper()
	got := names(parent.Children(), tags)
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestAddRemove(t *testing.T) {
	p, a, b := New(), New(), New()
	p.Add(a)
	p.Add(b)
	if a.Parent() != p || b.Parent() != p {
		t.Fatal("parent not set")
	}
	if !p.Contains(a) || !p.Contains(p) || a.Contains(p) {
		t.Error("Contains misbehaves")
	}

	// Adding to another parent detaches first.
	q := New()
	q.Add(a)
	if a.Parent() != q || len(p.Children()) != 1 {
		t.Error("reparenting did not detach")
	}

	q.Remove(b) // not a child, no-op
	q.Remove(a)
	if a.Parent() != nil || len(q.Children()) != 0 {
		t.Error("remove did not detach")
	}
}

func TestStacking(t *testing.T) {
	p, a, b, c := New(), New(), New(), New()
	tags := map[*Layer]string{a: "a", b: "b", c: "c"}
	p.Add(a)
	p.Add(b)
	p.Add(c)

	p.StackAtTop(a)
	wantOrder(t, p, tags, "b", "c", "a")

	p.StackAtTop(a) // already on top
	wantOrder(t, p, tags, "b", "c", "a")

	p.StackAbove(b, c)
	wantOrder(t, p, tags, "c", "b", "a")

	p.StackBelow(a, c)
	wantOrder(t, p, tags, "a", "c", "b")

	// Layers that are not children are ignored.
	p.StackAbove(New(), a)
	wantOrder(t, p, tags, "a", "c", "b")
}

func TestIsDrawn(t *testing.T) {
	p, c := New(), New()
	p.Add(c)
	c.SetVisible(true)
	if c.IsDrawn() {
		t.Error("drawn under a hidden parent")
	}
	p.SetVisible(true)
	if !c.IsDrawn() {
		t.Error("not drawn with visible chain")
	}
	if !c.Visible() || !p.Visible() {
		t.Error("own flags lost")
	}
}
