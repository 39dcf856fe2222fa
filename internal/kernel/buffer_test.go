package kernel

import "testing"

func TestPathBufferGrowthAndCompact(t *testing.T) {
	b := NewPathBuffer(2, 1)
	cols := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	for _, c := range cols {
		b.Append(c)
	}
	if b.Cols() != 4 {
		t.Fatalf("Cols() = %d, want 4", b.Cols())
	}
	for k, want := range cols {
		got := b.Column(k)
		for i, w := range want {
			if got[i] != w {
				t.Fatalf("Column(%d)[%d] = %v, want %v", k, i, got[i], w)
			}
		}
	}
	compact := b.Compact()
	if len(compact) != b.Rows()*b.Cols() {
		t.Fatalf("Compact() length = %d, want %d", len(compact), b.Rows()*b.Cols())
	}
	want := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	for i, w := range want {
		if compact[i] != w {
			t.Fatalf("Compact()[%d] = %v, want %v", i, compact[i], w)
		}
	}
}

func TestPathBufferZeroInitialCapacityClampsToOne(t *testing.T) {
	b := NewPathBuffer(1, 0)
	b.Append([]float64{9})
	if b.Cols() != 1 {
		t.Fatalf("Cols() = %d, want 1", b.Cols())
	}
}

func TestIntPathBufferGrowthAndCompact(t *testing.T) {
	b := NewIntPathBuffer(3, 1)
	cols := [][]int{{0, 0, 1}, {1, 1, 1}, {1, 1, 1}}
	for _, c := range cols {
		b.Append(c)
	}
	if b.Cols() != 3 {
		t.Fatalf("Cols() = %d, want 3", b.Cols())
	}
	got := b.Column(1)
	for i, w := range cols[1] {
		if got[i] != w {
			t.Fatalf("Column(1)[%d] = %v, want %v", i, got[i], w)
		}
	}
	compact := b.Compact()
	if len(compact) != 9 {
		t.Fatalf("Compact() length = %d, want 9", len(compact))
	}
}

func TestScalarPathBufferGrowthAndValues(t *testing.T) {
	b := NewScalarPathBuffer(1)
	vals := []float64{1e-8, 1.1e-8, 1.21e-8, 1.331e-8, 1.4641e-8}
	for _, v := range vals {
		b.Append(v)
	}
	if b.Len() != len(vals) {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(vals))
	}
	got := b.Values()
	for i, w := range vals {
		if got[i] != w {
			t.Fatalf("Values()[%d] = %v, want %v", i, got[i], w)
		}
	}
}
