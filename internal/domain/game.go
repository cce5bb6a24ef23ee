package domain

import (
    "errors"
    "fmt"
)

// Mark represents a cell state.
type Mark uint8

const (
    Empty Mark = iota
    X
    O
)

func (m Mark) String() string {
    switch m {
    case X:
        return "X"
    case O:
        return "O"
    default:
        return ""
    }
}

// Outcome is the result of scanning a 3x3 board.
type Outcome uint8

const (
    Pending Outcome = iota
    WinX
    WinO
    Draw
)

// Finished reports whether the board can no longer change hands.
func (o Outcome) Finished() bool { return o != Pending }

// Winner returns the winning mark, or Empty for Pending and Draw.
func (o Outcome) Winner() Mark {
    switch o {
    case WinX:
        return X
    case WinO:
        return O
    default:
        return Empty
    }
}

func (o Outcome) String() string {
    switch o {
    case WinX:
        return "X"
    case WinO:
        return "O"
    case Draw:
        return "Draw"
    default:
        return ""
    }
}

func outcomeOf(m Mark) Outcome {
    switch m {
    case X:
        return WinX
    case O:
        return WinO
    default:
        return Pending
    }
}

// ErrRejected is returned for every illegal move. The specific reasons
// below all wrap it.
var ErrRejected = errors.New("move rejected")

// Reasons a move is rejected.
var (
    ErrOutOfBounds   = fmt.Errorf("%w: out of bounds", ErrRejected)
    ErrInvalidMark   = fmt.Errorf("%w: invalid mark", ErrRejected)
    ErrOccupied      = fmt.Errorf("%w: cell occupied", ErrRejected)
    ErrWrongBoard    = fmt.Errorf("%w: wrong board", ErrRejected)
    ErrBoardFinished = fmt.Errorf("%w: board finished", ErrRejected)
    ErrGameOver      = fmt.Errorf("%w: game over", ErrRejected)
)

// ErrNoSuchStep is returned when navigating outside the recorded history.
var ErrNoSuchStep = errors.New("no such step")

// Lines lists the eight winning lines: rows top to bottom, columns left to
// right, then the two diagonals.
var Lines = [8][3]int{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// scan walks the lines in order and returns the index of the first line whose
// three cells are equal and matchable, or -1. full reports whether every
// cell is occupied.
func scan[T comparable](cells [9]T, matchable, occupied func(T) bool) (line int, full bool) {
    for i, ln := range Lines {
        a := cells[ln[0]]
        if matchable(a) && a == cells[ln[1]] && a == cells[ln[2]] {
            return i, true
        }
    }
    for _, c := range cells {
        if !occupied(c) {
            return -1, false
        }
    }
    return -1, true
}

func isMark(m Mark) bool { return m != Empty }

func isWin(o Outcome) bool { return o == WinX || o == WinO }

// DetectOutcome scans the nine cells of a sub-board.
func DetectOutcome(b SubBoard) Outcome {
    line, full := scan([9]Mark(b), isMark, isMark)
    switch {
    case line >= 0:
        return outcomeOf(b[Lines[line][0]])
    case full:
        return Draw
    default:
        return Pending
    }
}

// MetaOutcome scans the nine sub-board statuses. A drawn sub-board occupies
// its slot but never matches, so three aligned draws are not a win.
func MetaOutcome(status [9]Outcome) Outcome {
    line, full := scan(status, isWin, Outcome.Finished)
    switch {
    case line >= 0:
        return status[Lines[line][0]]
    case full:
        return Draw
    default:
        return Pending
    }
}

// WinningLine returns the first completed line of a sub-board, if any.
func WinningLine(b SubBoard) ([3]int, bool) {
    line, _ := scan([9]Mark(b), isMark, isMark)
    if line < 0 {
        return [3]int{}, false
    }
    return Lines[line], true
}

// MetaWinningLine returns the first line of sub-boards won by the same mark.
func MetaWinningLine(status [9]Outcome) ([3]int, bool) {
    line, _ := scan(status, isWin, Outcome.Finished)
    if line < 0 {
        return [3]int{}, false
    }
    return Lines[line], true
}
