// Package term is a line-oriented terminal front end for the game engine.
package term

import (
    "fmt"
    "io"
    "strings"

    "github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

func cellRune(m domain.Mark) string {
    if m == domain.Empty {
        return "."
    }
    return m.String()
}

// Render writes the position under the session cursor: the 9x9 grid with
// sub-boards separated by rules, finished sub-boards, the move constraint
// and the status line.
func Render(w io.Writer, sess *domain.Session) error {
    cur := sess.Current()
    var b strings.Builder
    for metaRow := 0; metaRow < 3; metaRow++ {
        if metaRow > 0 {
            b.WriteString("------+-------+------\n")
        }
        for line := 0; line < 3; line++ {
            parts := make([]string, 3)
            for metaCol := 0; metaCol < 3; metaCol++ {
                sub := metaRow*3 + metaCol
                cells := make([]string, 3)
                for i := range cells {
                    cells[i] = cellRune(cur.Boards[sub][line*3+i])
                }
                parts[metaCol] = strings.Join(cells, " ")
            }
            b.WriteString(strings.Join(parts, " | "))
            b.WriteByte('\n')
        }
    }

    var done []string
    for i, st := range cur.Status {
        if st.Finished() {
            label := st.String()
            if st == domain.Draw {
                label = "-"
            }
            done = append(done, fmt.Sprintf("%d:%s", i, label))
        }
    }
    if len(done) > 0 {
        fmt.Fprintf(&b, "Finished boards: %s\n", strings.Join(done, " "))
    }
    if !cur.Outcome().Finished() {
        if cur.Constrained() {
            fmt.Fprintf(&b, "Play in board %d\n", cur.Constraint)
        } else {
            b.WriteString("Play in any open board\n")
        }
    }
    fmt.Fprintf(&b, "%s (step %d of %d)\n", sess.Status(), sess.Cursor(), sess.Len()-1)

    _, err := io.WriteString(w, b.String())
    return err
}

// RenderHistory lists every step with the move that produced it.
func RenderHistory(w io.Writer, sess *domain.Session) error {
    var b strings.Builder
    moves := sess.Moves()
    for step := 0; step < sess.Len(); step++ {
        marker := " "
        if step == sess.Cursor() {
            marker = ">"
        }
        fmt.Fprintf(&b, "%s %2d. %s", marker, step, domain.StepLabel(step))
        if step > 0 {
            m := moves[step-1]
            fmt.Fprintf(&b, " (%s at %d %d)", m.Mark, m.Sub, m.Cell)
        }
        b.WriteByte('\n')
    }
    _, err := io.WriteString(w, b.String())
    return err
}
