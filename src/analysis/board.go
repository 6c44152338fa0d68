package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

var (
	ErrEmptyPosition    = errors.New("position is empty")
	ErrInvalidPosition  = errors.New("invalid FEN")
	ErrTerminalPosition = errors.New("position is already decided")
	ErrIllegalMove      = errors.New("illegal move")
)

// Position is an immutable board state backed by notnil/chess.
type Position struct {
	pos *chess.Position
}

// ParsePosition validates a FEN string.
func ParsePosition(fen string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, ErrEmptyPosition
	}

	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return &Position{pos: chess.NewGame(opt).Position()}, nil
}

// Terminal reports checkmate or stalemate.
func (p *Position) Terminal() bool {
	switch p.pos.Status() {
	case chess.Checkmate, chess.Stalemate:
		return true
	}
	return false
}

// Status names the terminal condition, or "" when play continues.
func (p *Position) Status() string {
	switch p.pos.Status() {
	case chess.Checkmate:
		return "checkmate"
	case chess.Stalemate:
		return "stalemate"
	}
	return ""
}

// SecondToMove reports whether black is to move.
func (p *Position) SecondToMove() bool {
	return p.pos.Turn() == chess.Black
}

func (p *Position) FEN() string {
	return p.pos.String()
}

// Move is a legal move together with its renderings and the position it
// leads to.
type Move struct {
	Standard string
	Long     string
	Next     *Position
}

// Apply plays a move given exactly in engine notation ("e2e4", "e7e8q").
func (p *Position) Apply(native string) (Move, error) {
	from, to, promo, ok := splitNative(native)
	if !ok {
		return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, native)
	}
	return p.play(from, to, promo, native)
}

// ApplyLenient plays a move after normalizing common deviations from
// engine notation: upper case, "-" or "x" separators, king-takes-own-rook
// castling and a missing promotion piece.
func (p *Position) ApplyLenient(native string) (Move, error) {
	s := strings.ToLower(strings.TrimSpace(native))
	s = strings.NewReplacer("-", "", "x", "", "=", "", "+", "", "#", "").Replace(s)

	from, to, promo, ok := splitNative(s)
	if !ok {
		return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, native)
	}

	board := p.pos.Board()
	mover := board.Piece(from)
	target := board.Piece(to)
	if mover.Type() == chess.King && target.Type() == chess.Rook && target.Color() == mover.Color() {
		if to.File() > from.File() {
			to = chess.Square(int(from.Rank())*8 + int(chess.FileG))
		} else {
			to = chess.Square(int(from.Rank())*8 + int(chess.FileC))
		}
	}
	if promo == chess.NoPieceType && mover.Type() == chess.Pawn && (to.Rank() == chess.Rank8 || to.Rank() == chess.Rank1) {
		promo = chess.Queen
	}

	return p.play(from, to, promo, native)
}

func (p *Position) play(from, to chess.Square, promo chess.PieceType, native string) (Move, error) {
	for _, m := range p.pos.ValidMoves() {
		if m.S1() != from || m.S2() != to || m.Promo() != promo {
			continue
		}
		return Move{
			Standard: chess.AlgebraicNotation{}.Encode(p.pos, m),
			Long:     longForm(p.pos, m),
			Next:     &Position{pos: p.pos.Update(m)},
		}, nil
	}
	return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, native)
}

// longForm renders origin and destination, e.g. "Ng1-f3", "e5xd6", "e7-e8=Q".
func longForm(pos *chess.Position, m *chess.Move) string {
	var b strings.Builder
	b.WriteString(pieceLetter(pos.Board().Piece(m.S1()).Type()))
	b.WriteString(m.S1().String())
	if m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant) {
		b.WriteByte('x')
	} else {
		b.WriteByte('-')
	}
	b.WriteString(m.S2().String())
	if m.Promo() != chess.NoPieceType {
		b.WriteByte('=')
		b.WriteString(pieceLetter(m.Promo()))
	}
	return b.String()
}

func pieceLetter(t chess.PieceType) string {
	switch t {
	case chess.King:
		return "K"
	case chess.Queen:
		return "Q"
	case chess.Rook:
		return "R"
	case chess.Bishop:
		return "B"
	case chess.Knight:
		return "N"
	}
	return ""
}

var promoPieces = map[byte]chess.PieceType{
	'q': chess.Queen,
	'r': chess.Rook,
	'b': chess.Bishop,
	'n': chess.Knight,
}

// splitNative parses origin, destination and optional promotion letter.
func splitNative(s string) (from, to chess.Square, promo chess.PieceType, ok bool) {
	if len(s) != 4 && len(s) != 5 {
		return 0, 0, chess.NoPieceType, false
	}
	from, ok1 := parseSquare(s[0:2])
	to, ok2 := parseSquare(s[2:4])
	if !ok1 || !ok2 {
		return 0, 0, chess.NoPieceType, false
	}
	promo = chess.NoPieceType
	if len(s) == 5 {
		pt, found := promoPieces[s[4]]
		if !found {
			return 0, 0, chess.NoPieceType, false
		}
		promo = pt
	}
	return from, to, promo, true
}

func parseSquare(s string) (chess.Square, bool) {
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, false
	}
	return chess.Square(int(rank-'1')*8 + int(file-'a')), true
}
