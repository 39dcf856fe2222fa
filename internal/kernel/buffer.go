package kernel

// PathBuffer is an append-only, column-growable store. Each column has a
// fixed row count; capacity doubles on overflow and the backing array is
// compacted to the exact column count once the run ends.
type PathBuffer struct {
	rows     int
	cols     int
	capacity int
	data     []float64
}

// NewPathBuffer allocates a buffer for `rows`-length columns with an
// initial capacity (callers typically pass a ⌈1.5n⌉ heuristic, or any
// other positive starting point).
func NewPathBuffer(rows, initialCapacity int) *PathBuffer {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &PathBuffer{
		rows:     rows,
		capacity: initialCapacity,
		data:     make([]float64, rows*initialCapacity),
	}
}

// Append copies col (length rows) into the next free column, growing the
// backing array by doubling if necessary.
func (b *PathBuffer) Append(col []float64) {
	if b.cols >= b.capacity {
		b.capacity *= 2
		grown := make([]float64, b.rows*b.capacity)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.cols*b.rows:(b.cols+1)*b.rows], col)
	b.cols++
}

// Cols returns the number of columns appended so far.
func (b *PathBuffer) Cols() int { return b.cols }

// Rows returns the fixed row count of every column.
func (b *PathBuffer) Rows() int { return b.rows }

// Column returns a view of column k. The returned slice aliases the
// buffer's backing array and must not be retained across further Appends.
func (b *PathBuffer) Column(k int) []float64 {
	return b.data[k*b.rows : (k+1)*b.rows]
}

// Compact returns the buffer's data trimmed to exactly Rows()*Cols()
// entries, safe to hand to a caller as a final result.
func (b *PathBuffer) Compact() []float64 {
	out := make([]float64, b.rows*b.cols)
	copy(out, b.data[:b.rows*b.cols])
	return out
}

// IntPathBuffer is PathBuffer's counterpart for the integer-valued ζ path.
type IntPathBuffer struct {
	rows     int
	cols     int
	capacity int
	data     []int
}

// NewIntPathBuffer allocates an integer column buffer.
func NewIntPathBuffer(rows, initialCapacity int) *IntPathBuffer {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &IntPathBuffer{
		rows:     rows,
		capacity: initialCapacity,
		data:     make([]int, rows*initialCapacity),
	}
}

// Append copies col (length rows) into the next free column, growing by
// doubling if necessary.
func (b *IntPathBuffer) Append(col []int) {
	if b.cols >= b.capacity {
		b.capacity *= 2
		grown := make([]int, b.rows*b.capacity)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.cols*b.rows:(b.cols+1)*b.rows], col)
	b.cols++
}

// Cols returns the number of columns appended so far.
func (b *IntPathBuffer) Cols() int { return b.cols }

// Rows returns the fixed row count of every column.
func (b *IntPathBuffer) Rows() int { return b.rows }

// Column returns a view of column k; callers must not retain it across
// further Appends.
func (b *IntPathBuffer) Column(k int) []int {
	return b.data[k*b.rows : (k+1)*b.rows]
}

// Compact returns the buffer's data trimmed to exactly Rows()*Cols().
func (b *IntPathBuffer) Compact() []int {
	out := make([]int, b.rows*b.cols)
	copy(out, b.data[:b.rows*b.cols])
	return out
}

// ScalarPathBuffer stores the γ path: one float64 per recorded column.
type ScalarPathBuffer struct {
	n        int
	capacity int
	data     []float64
}

// NewScalarPathBuffer allocates a scalar column buffer.
func NewScalarPathBuffer(initialCapacity int) *ScalarPathBuffer {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &ScalarPathBuffer{capacity: initialCapacity, data: make([]float64, initialCapacity)}
}

// Append appends one value, growing by doubling if necessary.
func (b *ScalarPathBuffer) Append(v float64) {
	if b.n >= b.capacity {
		b.capacity *= 2
		grown := make([]float64, b.capacity)
		copy(grown, b.data)
		b.data = grown
	}
	b.data[b.n] = v
	b.n++
}

// Values returns the appended values, trimmed to their exact count.
func (b *ScalarPathBuffer) Values() []float64 {
	out := make([]float64, b.n)
	copy(out, b.data[:b.n])
	return out
}

// Len returns the number of appended values.
func (b *ScalarPathBuffer) Len() int { return b.n }
