package contour

import (
	"strings"
	"testing"
)

// square builds an axis-aligned square contour with the given side at (x, y).
func square(x, y, side int) Contour {
	return Contour{
		Points: []Point{{x, y}, {x, y + side}, {x + side, y + side}, {x + side, y}},
		Parent: -1,
	}
}

func areas(cs []Contour) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Area()
	}
	return out
}

func TestRank_DescendingArea(t *testing.T) {
	cs := []Contour{square(0, 0, 2), square(10, 0, 5), square(20, 0, 3)}

	got := areas(Rank(cs))
	want := []float64{25, 9, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("areas: got %v, want %v", got, want)
		}
	}

	// Input slice is untouched.
	if cs[0].Area() != 4 {
		t.Error("Rank should not reorder its input")
	}
}

func TestRank_StableOnTies(t *testing.T) {
	cs := []Contour{square(0, 0, 3), square(10, 0, 3), square(20, 0, 4), square(30, 0, 3)}

	ranked := Rank(cs)
	wantX := []int{20, 0, 10, 30}
	for i, x := range wantX {
		if ranked[i].Points[0].X != x {
			t.Errorf("position %d: got contour at x=%d, want x=%d", i, ranked[i].Points[0].X, x)
		}
	}
}

func TestRank_RemapsParents(t *testing.T) {
	outer := square(0, 0, 10)
	hole := square(2, 2, 6)
	hole.Hole, hole.Parent = true, 0
	inner := square(4, 4, 8)
	inner.Parent = 1

	// Inner is deliberately larger than hole so ranking swaps them.
	ranked := Rank([]Contour{outer, hole, inner})

	if ranked[0].Parent != -1 {
		t.Errorf("outer parent: got %d, want -1", ranked[0].Parent)
	}
	if ranked[1].Area() != 64 || ranked[1].Parent != 2 {
		t.Errorf("inner: got area %v parent %d, want area 64 parent 2", ranked[1].Area(), ranked[1].Parent)
	}
	if !ranked[2].Hole || ranked[2].Parent != 0 {
		t.Errorf("hole: got hole=%v parent=%d, want hole=true parent=0", ranked[2].Hole, ranked[2].Parent)
	}
}

func TestFilter(t *testing.T) {
	cs := Rank([]Contour{square(0, 0, 10), square(20, 0, 5), square(40, 0, 2)})
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		min, max *float64
		want     []float64
	}{
		{"both bounds", f(5), f(50), []float64{25}},
		{"bounds are exclusive", f(4), f(100), []float64{25}},
		{"wide open", f(0), f(1000), []float64{100, 25, 4}},
		{"min only is ignored", f(50), nil, []float64{100, 25, 4}},
		{"max only is ignored", nil, f(10), []float64{100, 25, 4}},
		{"no bounds", nil, nil, []float64{100, 25, 4}},
		{"nothing passes", f(30), f(90), []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := areas(Filter(cs, tt.min, tt.max))
			if len(got) != len(tt.want) {
				t.Fatalf("areas: got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("areas: got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestFilter_DropsMissingParents(t *testing.T) {
	outer := square(0, 0, 20)
	hole := square(2, 2, 4)
	hole.Hole, hole.Parent = true, 0
	min, max := 1.0, 100.0

	got := Filter([]Contour{outer, hole}, &min, &max)
	if len(got) != 1 {
		t.Fatalf("count: got %d, want 1", len(got))
	}
	if got[0].Parent != -1 {
		t.Errorf("parent of a contour whose parent was filtered: got %d, want -1", got[0].Parent)
	}
}

func TestTop(t *testing.T) {
	cs := Rank([]Contour{square(0, 0, 1), square(0, 0, 2), square(0, 0, 3)})

	tests := []struct {
		k    int
		want int
	}{
		{0, 3},
		{-1, 3},
		{1, 1},
		{2, 2},
		{5, 3},
	}

	for _, tt := range tests {
		if got := len(Top(cs, tt.k)); got != tt.want {
			t.Errorf("Top(%d): got %d contours, want %d", tt.k, got, tt.want)
		}
	}
	if Top(cs, 1)[0].Area() != 9 {
		t.Error("Top should keep the largest contours")
	}
}

func TestLookup(t *testing.T) {
	f, err := Lookup("")
	if err != nil || f == nil {
		t.Fatalf("default backend: got err %v", err)
	}
	if _, err := Lookup(DefaultBackend); err != nil {
		t.Errorf("native backend: %v", err)
	}

	_, err = Lookup("nope")
	if err == nil {
		t.Fatal("unknown backend should fail")
	}
	if !strings.Contains(err.Error(), "native") {
		t.Errorf("error should list available backends: %v", err)
	}
}

func TestModeString(t *testing.T) {
	if External.String() != "external" || Tree.String() != "tree" || Mode(9).String() != "unknown" {
		t.Error("unexpected Mode names")
	}
}
