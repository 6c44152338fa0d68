package analysis

// Tier records how a single engine move was rendered.
type Tier int

const (
	TierStandard Tier = iota // SAN
	TierLong                 // origin and destination
	TierRaw                  // engine notation, unverified
)

func (t Tier) String() string {
	switch t {
	case TierStandard:
		return "standard"
	case TierLong:
		return "long"
	default:
		return "raw"
	}
}

// MaxRawFallback caps the line published when no move could be replayed.
const MaxRawFallback = 8

// ConvertedMove is the display form of one engine move.
type ConvertedMove struct {
	Tier   Tier
	Text   string
	Native string
}

// ConvertLine replays native moves from start and renders each one with the
// best tier that works for it. A failing move degrades only itself; the
// scratch position advances only on moves that applied. start is never
// modified.
//
// If not a single move applied, the first MaxRawFallback native moves are
// returned as raw text.
func ConvertLine(start *Position, native []string) []ConvertedMove {
	out := make([]ConvertedMove, 0, len(native))
	applied := 0
	pos := start

	for _, mv := range native {
		cm, next := convertMove(pos, mv)
		if next != nil {
			pos = next
			applied++
		}
		out = append(out, cm)
	}

	if applied == 0 && len(out) > MaxRawFallback {
		out = out[:MaxRawFallback]
	}
	return out
}

func convertMove(pos *Position, native string) (ConvertedMove, *Position) {
	if pos != nil {
		if m, err := pos.Apply(native); err == nil && m.Standard != "" {
			return ConvertedMove{Tier: TierStandard, Text: m.Standard, Native: native}, m.Next
		}
		if m, err := pos.ApplyLenient(native); err == nil && m.Long != "" {
			return ConvertedMove{Tier: TierLong, Text: m.Long, Native: native}, m.Next
		}
	}
	return ConvertedMove{Tier: TierRaw, Text: native, Native: native}, nil
}

// Texts returns the display strings of moves.
func Texts(moves []ConvertedMove) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.Text
	}
	return out
}
