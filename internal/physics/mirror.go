package physics

import "github.com/semo00000/champ-electrostatique/internal/core"

// MirrorSuffix marks image charges so they can be told apart from real ones.
const MirrorSuffix = "~mirror"

// MirrorCharges returns the image charges of a grounded conducting plane at
// y = 0: each charge reflected across the plane with its sign flipped.
func MirrorCharges(charges []core.Charge) []core.Charge {
	out := make([]core.Charge, len(charges))
	for i, c := range charges {
		out[i] = core.Charge{ID: c.ID + MirrorSuffix, X: c.X, Y: -c.Y, Q: -c.Q, Locked: true}
	}
	return out
}

// Effective returns the charge set every field computation should use.
func Effective(charges []core.Charge, mirror bool) []core.Charge {
	if !mirror || len(charges) == 0 {
		return charges
	}
	out := make([]core.Charge, 0, 2*len(charges))
	out = append(out, charges...)
	return append(out, MirrorCharges(charges)...)
}

// IsMirror reports whether c was produced by MirrorCharges.
func IsMirror(c core.Charge) bool {
	n := len(c.ID) - len(MirrorSuffix)
	return n >= 0 && c.ID[n:] == MirrorSuffix
}
