package analysis

import (
	"time"

	"github.com/jacokyle01/analysis-bridge/src/engine"
	"github.com/jacokyle01/analysis-bridge/src/models"
)

// Update is an accepted report ready to be published.
type Update struct {
	PV models.PVResult
	// First is set for the first report accepted by the aggregator.
	First bool
}

// Aggregator keeps the latest result for each principal variation slot of
// one session. It is not safe for concurrent use.
type Aggregator struct {
	start     *Position
	startedAt time.Time
	slots     []*models.PVResult
	populated int
	accepted  bool

	now func() time.Time
}

func NewAggregator(start *Position, lines int, startedAt time.Time) *Aggregator {
	if lines < 1 {
		lines = 1
	}
	return &Aggregator{
		start:     start,
		startedAt: startedAt,
		slots:     make([]*models.PVResult, lines),
		now:       time.Now,
	}
}

// Accept folds one info report into its slot. Reports for a line beyond the
// configured count, or without moves, are rejected.
func (a *Aggregator) Accept(info engine.Info) (Update, bool) {
	k := info.MultiPV
	if k < 1 || k > len(a.slots) || len(info.PV) == 0 {
		return Update{}, false
	}

	eval := models.Evaluation{Kind: models.EvalCentipawn}
	if info.Score != nil {
		eval = Normalize(*info.Score, a.start.SecondToMove())
	} else if prev := a.slots[k-1]; prev != nil {
		eval = prev.Evaluation
	}

	pv := models.PVResult{
		LineIndex:  k - 1,
		Depth:      info.Depth,
		Evaluation: eval,
		Moves:      Texts(ConvertLine(a.start, info.PV)),
		UCI:        append([]string(nil), info.PV...),
		Nodes:      info.Nodes,
		NPS:        info.NPS,
		LatencyMS:  a.now().Sub(a.startedAt).Milliseconds(),
	}

	// Latency measures when the slot was first filled.
	if prev := a.slots[k-1]; prev != nil {
		pv.LatencyMS = prev.LatencyMS
	} else {
		a.populated++
	}
	a.slots[k-1] = &pv

	first := !a.accepted
	a.accepted = true
	return Update{PV: pv, First: first}, true
}

// Populated counts the non-empty slots.
func (a *Aggregator) Populated() int {
	return a.populated
}

// Results returns the populated slots ordered by line index.
func (a *Aggregator) Results() []models.PVResult {
	out := make([]models.PVResult, 0, a.populated)
	for _, pv := range a.slots {
		if pv != nil {
			out = append(out, *pv)
		}
	}
	return out
}
