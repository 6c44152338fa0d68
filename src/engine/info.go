package engine

import (
	"strconv"
	"strings"
)

// ScoreKind distinguishes "score cp" from "score mate".
type ScoreKind int

const (
	ScoreCentipawns ScoreKind = iota
	ScoreMate
)

// Score is the engine's evaluation relative to the side to move.
type Score struct {
	Kind  ScoreKind
	Value int
}

// Info holds the fields extracted from one "info" line. Absent fields keep
// their zero value; Score is nil when the line carried no score.
type Info struct {
	MultiPV int
	Depth   int
	Score   *Score
	PV      []string
	Nodes   int64
	NPS     int64
}

// keywords terminate a "pv" move list.
var keywords = map[string]bool{
	"depth":          true,
	"seldepth":       true,
	"time":           true,
	"nodes":          true,
	"pv":             true,
	"multipv":        true,
	"score":          true,
	"currmove":       true,
	"currmovenumber": true,
	"hashfull":       true,
	"nps":            true,
	"tbhits":         true,
	"sbhits":         true,
	"cpuload":        true,
	"string":         true,
	"refutation":     true,
	"currline":       true,
	"wdl":            true,
}

// ParseInfo scans an "info" line. Unknown tokens and malformed numbers are
// skipped; it never fails. MultiPV defaults to 1.
func ParseInfo(line string) Info {
	info := Info{MultiPV: 1}
	parts := strings.Fields(line)

	for i := 0; i < len(parts); i++ {
		switch parts[i] {
		case "multipv":
			if n, ok := intAt(parts, i+1); ok {
				info.MultiPV = n
				i++
			}
		case "depth":
			if n, ok := intAt(parts, i+1); ok {
				info.Depth = n
				i++
			}
		case "nodes":
			if n, ok := int64At(parts, i+1); ok {
				info.Nodes = n
				i++
			}
		case "nps":
			if n, ok := int64At(parts, i+1); ok {
				info.NPS = n
				i++
			}
		case "score":
			if i+2 >= len(parts) {
				continue
			}
			n, err := strconv.Atoi(parts[i+2])
			if err != nil {
				continue
			}
			switch parts[i+1] {
			case "cp":
				info.Score = &Score{Kind: ScoreCentipawns, Value: n}
				i += 2
			case "mate":
				info.Score = &Score{Kind: ScoreMate, Value: n}
				i += 2
			}
		case "pv":
			j := i + 1
			for j < len(parts) && !keywords[parts[j]] {
				j++
			}
			if j > i+1 {
				info.PV = append([]string(nil), parts[i+1:j]...)
			}
			i = j - 1
		case "string":
			// free text to end of line
			return info
		}
	}

	return info
}

func intAt(parts []string, i int) (int, bool) {
	if i >= len(parts) {
		return 0, false
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0, false
	}
	return n, true
}

func int64At(parts []string, i int) (int64, bool) {
	if i >= len(parts) {
		return 0, false
	}
	n, err := strconv.ParseInt(parts[i], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
