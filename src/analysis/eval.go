package analysis

import (
	"github.com/jacokyle01/analysis-bridge/src/engine"
	"github.com/jacokyle01/analysis-bridge/src/models"
)

// MateScore is the magnitude a forced mate is mapped to so that mates order
// above every centipawn score.
const MateScore = 10000

// Normalize converts a side-to-move score into white's point of view.
// secondToMove is the side to move of the analysed position.
func Normalize(score engine.Score, secondToMove bool) models.Evaluation {
	sign := 1
	if secondToMove {
		sign = -1
	}

	if score.Kind != engine.ScoreMate {
		return models.Evaluation{Kind: models.EvalCentipawn, Value: sign * score.Value}
	}

	// "mate 0" means the side to move is already mated.
	value := -MateScore
	if score.Value > 0 {
		value = MateScore
	}
	return models.Evaluation{
		Kind:  models.EvalMate,
		Value: sign * value,
		Mate:  sign * score.Value,
	}
}
