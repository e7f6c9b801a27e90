// Package history keeps a fixed-size rolling window of recent values for
// graphs. Nothing is stored beyond the window.
package history

// DefaultSize matches the width of the dashboard graphs.
const DefaultSize = 100

// Ring is a fixed-capacity window of float64 samples. The zero value is not
// usable; call New.
type Ring struct {
	buf   []float64
	start int
	n     int
}

// New returns a Ring holding at most size values. Non-positive sizes fall
// back to DefaultSize.
func New(size int) *Ring {
	if size <= 0 {
		size = DefaultSize
	}
	return &Ring{buf: make([]float64, size)}
}

// Push appends v, discarding the oldest value when full.
func (r *Ring) Push(v float64) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// Len is the number of values held.
func (r *Ring) Len() int { return r.n }

// Cap is the window size.
func (r *Ring) Cap() int { return len(r.buf) }

// Values copies the held values, oldest first.
func (r *Ring) Values() []float64 {
	out := make([]float64, r.n)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Padded copies the window oldest first, left-padded with zeros to Cap so a
// graph scrolls in from the right.
func (r *Ring) Padded() []float64 {
	out := make([]float64, len(r.buf))
	copy(out[len(r.buf)-r.n:], r.Values())
	return out
}
