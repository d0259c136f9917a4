package dragdrop

// Zone is where, within a hovered row, a drop would land.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneAbove
	ZoneCenter
	ZoneBelow
)

func (z Zone) String() string {
	switch z {
	case ZoneAbove:
		return "above"
	case ZoneCenter:
		return "center"
	case ZoneBelow:
		return "below"
	default:
		return "none"
	}
}

// Classify maps a pointer offset within a row of the given height to a zone:
// top quarter above, bottom quarter below, the middle half center. A row
// without height is all center.
func Classify(offsetY, height float64) Zone {
	if height <= 0 {
		return ZoneCenter
	}
	pct := offsetY / height
	switch {
	case pct < 0.25:
		return ZoneAbove
	case pct > 0.75:
		return ZoneBelow
	default:
		return ZoneCenter
	}
}
