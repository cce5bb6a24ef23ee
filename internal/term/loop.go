package term

import (
    "bufio"
    "errors"
    "fmt"
    "io"
    "log/slog"
    "strconv"
    "strings"

    "github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

const help = `commands:
  <board> <cell>   play the current mark (both 0-8, row-major)
  jump <step>      view an earlier step; playing from it discards later steps
  history          list steps
  moves            list legal moves
  new              start over
  quit             leave
`

// Loop drives one session from line-oriented input.
type Loop struct {
    sess *domain.Session
    out  io.Writer
    log  *slog.Logger
}

// NewLoop returns a loop over sess writing to out.
func NewLoop(sess *domain.Session, out io.Writer, logger *slog.Logger) *Loop {
    if logger == nil {
        logger = slog.New(slog.NewTextHandler(io.Discard, nil))
    }
    return &Loop{sess: sess, out: out, log: logger.With("component", "term")}
}

// Session returns the session currently being played.
func (l *Loop) Session() *domain.Session { return l.sess }

var errQuit = errors.New("quit")

// Run reads commands until quit or EOF.
func (l *Loop) Run(in io.Reader) error {
    if err := Render(l.out, l.sess); err != nil {
        return err
    }
    sc := bufio.NewScanner(in)
    for {
        fmt.Fprint(l.out, "> ")
        if !sc.Scan() {
            fmt.Fprintln(l.out)
            return sc.Err()
        }
        err := l.Exec(sc.Text())
        if errors.Is(err, errQuit) {
            return nil
        }
        if err != nil {
            return err
        }
    }
}

// Exec handles a single command line.
func (l *Loop) Exec(line string) error {
    fields := strings.Fields(line)
    if len(fields) == 0 {
        return nil
    }
    switch fields[0] {
    case "quit", "exit", "q":
        return errQuit
    case "help", "?":
        _, err := io.WriteString(l.out, help)
        return err
    case "new":
        l.sess = domain.NewSession()
        return Render(l.out, l.sess)
    case "history":
        return RenderHistory(l.out, l.sess)
    case "moves":
        return l.listMoves()
    case "jump":
        if len(fields) != 2 {
            return l.say("usage: jump <step>")
        }
        step, err := strconv.Atoi(fields[1])
        if err != nil {
            return l.say("usage: jump <step>")
        }
        if _, err = l.sess.NavigateTo(step); err != nil {
            return l.say(fmt.Sprintf("no step %d (0-%d)", step, l.sess.Len()-1))
        }
        return Render(l.out, l.sess)
    }

    if len(fields) != 2 {
        return l.say("unknown command, try help")
    }
    sub, err1 := strconv.Atoi(fields[0])
    cell, err2 := strconv.Atoi(fields[1])
    if err1 != nil || err2 != nil {
        return l.say("unknown command, try help")
    }
    if _, err := l.sess.Submit(sub, cell); err != nil {
        l.log.Debug("move rejected", "sub", sub, "cell", cell, "reason", err)
        return l.say(rejectReason(err))
    }
    return Render(l.out, l.sess)
}

func (l *Loop) listMoves() error {
    moves := l.sess.Current().LegalMoves(l.sess.Turn())
    if len(moves) == 0 {
        return l.say("no legal moves")
    }
    parts := make([]string, len(moves))
    for i, m := range moves {
        parts[i] = fmt.Sprintf("%d %d", m.Sub, m.Cell)
    }
    return l.say(strings.Join(parts, ", "))
}

func (l *Loop) say(msg string) error {
    _, err := fmt.Fprintln(l.out, msg)
    return err
}

func rejectReason(err error) string {
    switch {
    case errors.Is(err, domain.ErrOutOfBounds):
        return "board and cell must be 0-8"
    case errors.Is(err, domain.ErrOccupied):
        return "cell is occupied"
    case errors.Is(err, domain.ErrWrongBoard):
        return "play in the highlighted board"
    case errors.Is(err, domain.ErrBoardFinished):
        return "that board is finished"
    case errors.Is(err, domain.ErrGameOver):
        return "game is over"
    default:
        return "invalid move"
    }
}
