package analysis

import (
	"reflect"
	"testing"
)

func TestConvertLine(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		native []string
		texts  []string
		tiers  []Tier
	}{
		{
			name:   "all standard",
			fen:    startFEN,
			native: []string{"e2e4", "e7e5", "g1f3", "b8c6"},
			texts:  []string{"e4", "e5", "Nf3", "Nc6"},
			tiers:  []Tier{TierStandard, TierStandard, TierStandard, TierStandard},
		},
		{
			name:   "degrades per move",
			fen:    startFEN,
			native: []string{"e2e4", "E7E5", "zz99", "g1f3"},
			texts:  []string{"e4", "e7-e5", "zz99", "Nf3"},
			tiers:  []Tier{TierStandard, TierLong, TierRaw, TierStandard},
		},
		{
			name:   "castling",
			fen:    castleFEN,
			native: []string{"e1g1"},
			texts:  []string{"O-O"},
			tiers:  []Tier{TierStandard},
		},
		{
			name:   "promotion",
			fen:    promoteFEN,
			native: []string{"e7e8q"},
			texts:  []string{"e8=Q"},
			tiers:  []Tier{TierStandard},
		},
		{
			name:   "empty line",
			fen:    startFEN,
			native: nil,
			texts:  []string{},
			tiers:  []Tier{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moves := ConvertLine(mustParse(t, tt.fen), tt.native)

			if got := Texts(moves); !reflect.DeepEqual(got, tt.texts) {
				t.Errorf("texts = %q, want %q", got, tt.texts)
			}
			tiers := make([]Tier, len(moves))
			for i, m := range moves {
				tiers[i] = m.Tier
				if m.Native != tt.native[i] {
					t.Errorf("move %d native = %q, want %q", i, m.Native, tt.native[i])
				}
			}
			if !reflect.DeepEqual(tiers, tt.tiers) {
				t.Errorf("tiers = %v, want %v", tiers, tt.tiers)
			}
		})
	}
}

func TestConvertLine_PrefersStandard(t *testing.T) {
	// e2e4 would also pass the lenient tier; the strict tier must win.
	moves := ConvertLine(mustParse(t, startFEN), []string{"e2e4"})
	if moves[0].Tier != TierStandard {
		t.Fatalf("tier = %v, want standard", moves[0].Tier)
	}
}

func TestConvertLine_NothingAppliesCapsRawFallback(t *testing.T) {
	native := make([]string, 12)
	for i := range native {
		native[i] = "h7h5"
	}

	moves := ConvertLine(mustParse(t, startFEN), native)
	if len(moves) != MaxRawFallback {
		t.Fatalf("len = %d, want %d", len(moves), MaxRawFallback)
	}
	for i, m := range moves {
		if m.Tier != TierRaw || m.Text != "h7h5" {
			t.Errorf("move %d = %+v, want raw h7h5", i, m)
		}
	}
}

func TestConvertLine_LeavesStartUntouched(t *testing.T) {
	start := mustParse(t, startFEN)
	before := start.FEN()

	ConvertLine(start, []string{"e2e4", "e7e5", "g1f3"})

	if after := start.FEN(); after != before {
		t.Errorf("start position changed: %q -> %q", before, after)
	}
}
