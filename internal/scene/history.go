package scene

import "github.com/semo00000/champ-electrostatique/internal/core"

// HistoryLimit is the number of charge snapshots kept for undo.
const HistoryLimit = 50

// History is a bounded list of charge snapshots with a cursor. Recording
// after an undo discards the redo tail.
type History struct {
	snaps [][]core.Charge
	idx   int
	limit int
}

func NewHistory(limit int) *History {
	if limit < 2 {
		limit = 2
	}
	return &History{idx: -1, limit: limit}
}

// Record stores a copy of cs as the newest snapshot.
func (h *History) Record(cs []core.Charge) {
	h.snaps = append(h.snaps[:h.idx+1], core.CloneCharges(cs))
	if len(h.snaps) > h.limit {
		h.snaps = h.snaps[len(h.snaps)-h.limit:]
	}
	h.idx = len(h.snaps) - 1
}

// Undo moves the cursor back and returns that snapshot.
func (h *History) Undo() ([]core.Charge, error) {
	if h.idx <= 0 {
		return nil, core.ErrNothingToUndo
	}
	h.idx--
	return core.CloneCharges(h.snaps[h.idx]), nil
}

// Redo moves the cursor forward and returns that snapshot.
func (h *History) Redo() ([]core.Charge, error) {
	if h.idx >= len(h.snaps)-1 {
		return nil, core.ErrNothingToRedo
	}
	h.idx++
	return core.CloneCharges(h.snaps[h.idx]), nil
}

func (h *History) CanUndo() bool { return h.idx > 0 }
func (h *History) CanRedo() bool { return h.idx < len(h.snaps)-1 }
func (h *History) Len() int      { return len(h.snaps) }
