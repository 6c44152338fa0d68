package engine

import (
	"bytes"
	"strings"
)

// EventKind identifies a recognized engine output line.
type EventKind int

const (
	EventUCIOK EventKind = iota
	EventReadyOK
	EventInfo
	EventBestMove
	// EventExit is produced by the Supervisor, never by the parser.
	EventExit
)

func (k EventKind) String() string {
	switch k {
	case EventUCIOK:
		return "uciok"
	case EventReadyOK:
		return "readyok"
	case EventInfo:
		return "info"
	case EventBestMove:
		return "bestmove"
	case EventExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Event is one structured item of engine output.
type Event struct {
	Kind     EventKind
	Line     string
	Info     Info   // EventInfo
	BestMove string // EventBestMove
	Ponder   string // EventBestMove, may be empty
	Err      error  // EventExit
}

// LineParser turns arbitrarily chunked engine output into events. The zero
// value is ready to use. It is not safe for concurrent use.
type LineParser struct {
	buf []byte
}

// Feed appends chunk to the carry-over buffer and returns the events for
// every complete line, in order. A trailing partial line is kept.
func (p *LineParser) Feed(chunk []byte) []Event {
	p.buf = append(p.buf, chunk...)

	var events []Event
	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			break
		}
		line := string(p.buf[:i])
		p.buf = p.buf[i+1:]
		if ev, ok := Classify(line); ok {
			events = append(events, ev)
		}
	}
	if len(p.buf) == 0 {
		p.buf = nil
	}
	return events
}

// Flush treats whatever remains in the buffer as a final line.
func (p *LineParser) Flush() []Event {
	line := string(p.buf)
	p.buf = nil
	if ev, ok := Classify(line); ok {
		return []Event{ev}
	}
	return nil
}

// Classify maps a single line to an event. Blank and unrecognized lines
// report false.
func Classify(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, false
	}

	switch line {
	case "uciok":
		return Event{Kind: EventUCIOK, Line: line}, true
	case "readyok":
		return Event{Kind: EventReadyOK, Line: line}, true
	}

	parts := strings.Fields(line)
	if hasToken(parts, "info") {
		return Event{Kind: EventInfo, Line: line, Info: ParseInfo(line)}, true
	}
	for i, part := range parts {
		if part != "bestmove" {
			continue
		}
		ev := Event{Kind: EventBestMove, Line: line}
		if i+1 < len(parts) {
			ev.BestMove = parts[i+1]
		}
		if i+3 < len(parts) && parts[i+2] == "ponder" {
			ev.Ponder = parts[i+3]
		}
		return ev, true
	}

	return Event{}, false
}

func hasToken(parts []string, token string) bool {
	for _, part := range parts {
		if part == token {
			return true
		}
	}
	return false
}
