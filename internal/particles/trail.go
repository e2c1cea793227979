package particles

import "gonum.org/v1/gonum/spatial/r2"

// Trail keeps the newest Cap positions of a moving point.
type Trail struct {
	pts []r2.Vec
	Cap int
}

func NewTrail(capacity int) Trail {
	return Trail{Cap: capacity}
}

// Push appends p, dropping the oldest point when full. A zero Cap keeps
// nothing.
func (t *Trail) Push(p r2.Vec) {
	if t.Cap <= 0 {
		return
	}
	if len(t.pts) >= t.Cap {
		n := copy(t.pts, t.pts[len(t.pts)-t.Cap+1:])
		t.pts = t.pts[:n]
	}
	t.pts = append(t.pts, p)
}

func (t *Trail) Points() []r2.Vec { return t.pts }
func (t *Trail) Len() int         { return len(t.pts) }
func (t *Trail) Reset()           { t.pts = t.pts[:0] }
