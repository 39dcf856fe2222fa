package graph

import "testing"

func TestNewValidatesBounds(t *testing.T) {
	cases := []struct {
		name  string
		n, p  int
		edges []Edge
		want  bool // true if New should succeed
	}{
		{"valid", 3, 2, []Edge{{L: 1, M: 2, W: 1}, {L: 2, M: 3, W: 0.5}}, true},
		{"zero n", 0, 2, nil, false},
		{"zero p", 3, 0, nil, false},
		{"out of range", 3, 2, []Edge{{L: 1, M: 4, W: 1}}, false},
		{"l equals m", 3, 2, []Edge{{L: 2, M: 2, W: 1}}, false},
		{"l greater than m", 3, 2, []Edge{{L: 2, M: 1, W: 1}}, false},
		{"non-positive weight", 3, 2, []Edge{{L: 1, M: 2, W: 0}}, false},
		{"duplicate edge", 3, 2, []Edge{{L: 1, M: 2, W: 1}, {L: 1, M: 2, W: 2}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.n, c.p, c.edges)
			if c.want && err != nil {
				t.Fatalf("New() = %v, want success", err)
			}
			if !c.want && err == nil {
				t.Fatalf("New() = nil, want error")
			}
		})
	}
}

func TestBlockAndEndpointRanges(t *testing.T) {
	g, err := New(3, 2, []Edge{{L: 1, M: 2, W: 1}, {L: 2, M: 3, W: 1}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	s, e := g.Block(0)
	if s != 0 || e != 2 {
		t.Fatalf("Block(0) = (%d, %d), want (0, 2)", s, e)
	}
	s, e = g.E1(1)
	if s != 2 || e != 4 {
		t.Fatalf("E1(1) = (%d, %d), want (2, 4)", s, e)
	}
	s, e = g.E2(1)
	if s != 4 || e != 6 {
		t.Fatalf("E2(1) = (%d, %d), want (4, 6)", s, e)
	}
}

func TestConnected(t *testing.T) {
	g, err := New(3, 1, []Edge{{L: 1, M: 2, W: 1}, {L: 2, M: 3, W: 1}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !g.Connected() {
		t.Fatal("Connected() = false, want true for a path graph")
	}

	disconnected, err := New(4, 1, []Edge{{L: 1, M: 2, W: 1}, {L: 3, M: 4, W: 1}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if disconnected.Connected() {
		t.Fatal("Connected() = true, want false for two disjoint components")
	}
}

func TestConnectedSinglePoint(t *testing.T) {
	g, err := New(1, 1, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !g.Connected() {
		t.Fatal("Connected() = false, want true for a single-point graph")
	}
}
