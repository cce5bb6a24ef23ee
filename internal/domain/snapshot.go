package domain

// SubBoard is one 3x3 board stored row-major.
type SubBoard [9]Mark

// MetaBoard is the 3x3 arrangement of sub-boards, indexed like cells.
type MetaBoard [9]SubBoard

// Unconstrained means the next player may choose any unfinished sub-board.
const Unconstrained = -1

// Move is one accepted ply.
type Move struct {
    Sub  int
    Cell int
    Mark Mark
}

// Snapshot is the game state after a ply. Snapshots are values; Apply
// returns a new one and never modifies its receiver.
type Snapshot struct {
    Boards     MetaBoard
    Status     [9]Outcome
    Constraint int
}

// Start returns the empty, unconstrained position.
func Start() Snapshot {
    return Snapshot{Constraint: Unconstrained}
}

// Outcome is the meta-board result.
func (s Snapshot) Outcome() Outcome { return MetaOutcome(s.Status) }

// Constrained reports whether the next move is restricted to one sub-board.
func (s Snapshot) Constrained() bool { return s.Constraint != Unconstrained }

// Playable reports whether sub-board sub accepts moves in this position.
func (s Snapshot) Playable(sub int) bool {
    if sub < 0 || sub > 8 || s.Outcome().Finished() || s.Status[sub].Finished() {
        return false
    }
    return !s.Constrained() || s.Constraint == sub
}

// Validate checks a move without applying it.
func (s Snapshot) Validate(sub, cell int, m Mark) error {
    if sub < 0 || sub > 8 || cell < 0 || cell > 8 {
        return ErrOutOfBounds
    }
    if m != X && m != O {
        return ErrInvalidMark
    }
    if s.Boards[sub][cell] != Empty {
        return ErrOccupied
    }
    if s.Constrained() && s.Constraint != sub {
        return ErrWrongBoard
    }
    if s.Status[sub].Finished() {
        return ErrBoardFinished
    }
    if s.Outcome().Finished() {
        return ErrGameOver
    }
    return nil
}

// Apply plays m at cell of sub-board sub and returns the resulting snapshot.
// The cell played routes the opponent to the sub-board with the same index,
// unless that sub-board is already finished.
func (s Snapshot) Apply(sub, cell int, m Mark) (Snapshot, error) {
    if err := s.Validate(sub, cell, m); err != nil {
        return s, err
    }
    next := s
    next.Boards[sub][cell] = m
    for i := range next.Boards {
        next.Status[i] = DetectOutcome(next.Boards[i])
    }
    next.Constraint = cell
    if next.Status[cell].Finished() {
        next.Constraint = Unconstrained
    }
    return next, nil
}

// LegalMoves lists every move m could make from this position.
func (s Snapshot) LegalMoves(m Mark) []Move {
    var out []Move
    for sub := 0; sub < 9; sub++ {
        if !s.Playable(sub) {
            continue
        }
        for cell := 0; cell < 9; cell++ {
            if s.Validate(sub, cell, m) == nil {
                out = append(out, Move{Sub: sub, Cell: cell, Mark: m})
            }
        }
    }
    return out
}

// Filled counts the occupied cells across the meta-board.
func (s Snapshot) Filled() int {
    n := 0
    for _, b := range s.Boards {
        for _, c := range b {
            if c != Empty {
                n++
            }
        }
    }
    return n
}
