package models

// Defaults applied to start_analysis requests that omit a field.
const (
	DefaultDepth       = 20
	DefaultMultiPV     = 3
	DefaultTimeLimitMS = 750
)

// AnalysisConfig is the client-supplied configuration of one analysis request.
// Zero values are replaced by the defaults above.
type AnalysisConfig struct {
	FEN       string `json:"fen"`
	Depth     int    `json:"depth,omitempty"`
	MultiPV   int    `json:"multiPV,omitempty"`
	TimeLimit int    `json:"timeLimit,omitempty"` // milliseconds
}

// WithDefaults returns a copy of c with every unset or non-positive field
// replaced by its default.
func (c AnalysisConfig) WithDefaults() AnalysisConfig {
	if c.Depth <= 0 {
		c.Depth = DefaultDepth
	}
	if c.MultiPV <= 0 {
		c.MultiPV = DefaultMultiPV
	}
	if c.TimeLimit <= 0 {
		c.TimeLimit = DefaultTimeLimitMS
	}
	return c
}
