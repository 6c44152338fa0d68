package models

// EvalKind tells a centipawn score apart from a forced mate.
type EvalKind string

const (
	EvalCentipawn EvalKind = "centipawn"
	EvalMate      EvalKind = "mate"
)

// Evaluation is always expressed from white's point of view.
// For mates Value is +/-MateScore and Mate holds the signed distance in moves.
type Evaluation struct {
	Kind  EvalKind `json:"kind"`
	Value int      `json:"value"`
	Mate  int      `json:"mate,omitempty"`
}

// PVResult is the latest report for one principal variation slot.
type PVResult struct {
	LineIndex  int        `json:"lineIndex"` // 0-based
	Depth      int        `json:"depth"`
	Evaluation Evaluation `json:"evaluation"`
	Moves      []string   `json:"moves"`
	UCI        []string   `json:"uci"`
	Nodes      int64      `json:"nodes,omitempty"`
	NPS        int64      `json:"nps,omitempty"`
	LatencyMS  int64      `json:"latencyMs"`
}
