package domain

import "fmt"

// Session owns a game's history and the cursor into it. History is only
// ever truncated when a move is submitted from an earlier step.
type Session struct {
    history []Snapshot
    moves   []Move // moves[k] produced history[k+1]
    cursor  int
}

// NewSession returns a session positioned at the empty board with X to move.
func NewSession() *Session {
    return &Session{history: []Snapshot{Start()}}
}

// Current returns the snapshot under the cursor.
func (s *Session) Current() Snapshot { return s.history[s.cursor] }

// Cursor returns the viewed history index.
func (s *Session) Cursor() int { return s.cursor }

// Len returns the number of recorded snapshots, including the start.
func (s *Session) Len() int { return len(s.history) }

// Turn is derived from the cursor: X moves on even steps, O on odd.
func (s *Session) Turn() Mark {
    if s.cursor%2 == 0 {
        return X
    }
    return O
}

// Outcome returns the meta-board result at the cursor.
func (s *Session) Outcome() Outcome { return s.Current().Outcome() }

// Submit plays the current turn at (sub, cell). On rejection nothing changes.
// Snapshots after the cursor are discarded before the new one is appended.
func (s *Session) Submit(sub, cell int) (Snapshot, error) {
    m := s.Turn()
    next, err := s.Current().Apply(sub, cell, m)
    if err != nil {
        return s.Current(), err
    }
    s.history = append(s.history[:s.cursor+1:s.cursor+1], next)
    s.moves = append(s.moves[:s.cursor:s.cursor], Move{Sub: sub, Cell: cell, Mark: m})
    s.cursor++
    return next, nil
}

// NavigateTo moves the cursor without touching history.
func (s *Session) NavigateTo(step int) (Snapshot, error) {
    if step < 0 || step >= len(s.history) {
        return s.Current(), fmt.Errorf("%w: %d of %d", ErrNoSuchStep, step, len(s.history))
    }
    s.cursor = step
    return s.history[step], nil
}

// Step returns the snapshot recorded at step.
func (s *Session) Step(step int) (Snapshot, bool) {
    if step < 0 || step >= len(s.history) {
        return Snapshot{}, false
    }
    return s.history[step], true
}

// Moves returns the moves that produced steps 1..Len()-1.
func (s *Session) Moves() []Move {
    out := make([]Move, len(s.moves))
    copy(out, s.moves)
    return out
}

// LastMove returns the move that produced the snapshot under the cursor.
func (s *Session) LastMove() (Move, bool) {
    if s.cursor == 0 {
        return Move{}, false
    }
    return s.moves[s.cursor-1], true
}

// Clone returns an independent copy of the session.
func (s *Session) Clone() *Session {
    cp := &Session{
        history: make([]Snapshot, len(s.history)),
        moves:   make([]Move, len(s.moves)),
        cursor:  s.cursor,
    }
    copy(cp.history, s.history)
    copy(cp.moves, s.moves)
    return cp
}

// Status renders the one-line game status shown to players.
func (s *Session) Status() string {
    switch o := s.Outcome(); o {
    case WinX, WinO:
        return "Winner: " + o.String()
    case Draw:
        return "Draw"
    default:
        return "Next player: " + s.Turn().String()
    }
}

// StepLabel describes a history entry for a move list.
func StepLabel(step int) string {
    if step == 0 {
        return "Go to game start"
    }
    return fmt.Sprintf("Go to move #%d", step)
}
