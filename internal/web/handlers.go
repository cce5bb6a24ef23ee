package web

import (
    "errors"
    "fmt"
    "io"
    "log/slog"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/jaminalder/ultimate-tic-tac-toe/internal/app"
    "github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

type handlers struct {
    svc       *app.Service
    tpl       *templates
    log       *slog.Logger
    heartbeat time.Duration
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
    data := newBoardData(gs)
    data.Error = errMsg
    return renderTemplate(h.tpl.board, "", data)
}

// broadcast renders the board pushed to spectators.
func (h *handlers) broadcast(gs app.GameState) []byte { return h.renderBoard(gs, "") }

func (h *handlers) parseForm(r *http.Request, id string) {
    if err := r.ParseForm(); err != nil {
        h.log.Debug("malformed form", "game_id", id, "path", r.URL.Path, "error", err)
    }
}

func rejectMessage(err error) string {
    switch {
    case errors.Is(err, domain.ErrOccupied):
        return "Cell is occupied"
    case errors.Is(err, domain.ErrWrongBoard):
        return "Play in the highlighted board"
    case errors.Is(err, domain.ErrBoardFinished):
        return "That board is finished"
    case errors.Is(err, domain.ErrGameOver):
        return "Game is over"
    case errors.Is(err, domain.ErrOutOfBounds):
        return "Out of bounds"
    default:
        return "Invalid move"
    }
}

func writeHTML(w http.ResponseWriter, b []byte) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    writeHTML(w, renderTemplate(h.tpl.index, "base", nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.CreateGame()
    if err != nil {
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    writeHTML(w, renderTemplate(h.tpl.game, "base", newBoardData(*gs)))
}

// formInt reads an integer form field; a missing or malformed value becomes
// -1 so the engine rejects it as out of bounds.
func formInt(r *http.Request, key string) int {
    v, err := strconv.Atoi(r.Form.Get(key))
    if err != nil {
        return -1
    }
    return v
}

// play forwards a move intent. A rejected move changes nothing: the
// unchanged board is rendered back with a short reason.
func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    h.parseForm(r, id)
    gs, err := h.svc.Play(id, formInt(r, "b"), formInt(r, "c"))
    var errMsg string
    switch {
    case errors.Is(err, app.ErrNotFound):
        http.NotFound(w, r)
        return
    case err != nil && !errors.Is(err, domain.ErrRejected):
        h.log.Error("play failed", "game_id", id, "error", err)
        http.Error(w, "failed to play", http.StatusInternalServerError)
        return
    case err != nil:
        errMsg = rejectMessage(err)
    }
    writeHTML(w, h.renderBoard(*gs, errMsg))
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    h.parseForm(r, id)
    gs, err := h.svc.Navigate(id, formInt(r, "step"))
    switch {
    case errors.Is(err, app.ErrNotFound):
        http.NotFound(w, r)
        return
    case errors.Is(err, domain.ErrNoSuchStep):
        http.Error(w, "no such step", http.StatusBadRequest)
        return
    case err != nil:
        h.log.Error("jump failed", "game_id", id, "error", err)
        http.Error(w, "failed to navigate", http.StatusInternalServerError)
        return
    }
    writeHTML(w, h.renderBoard(*gs, ""))
}

// writeEvent emits one SSE event; multi-line payloads get one data field per line.
func writeEvent(w io.Writer, event string, payload []byte) {
    _, _ = fmt.Fprintf(w, "event: %s\n", event)
    for _, line := range strings.Split(strings.TrimRight(string(payload), "\n"), "\n") {
        _, _ = fmt.Fprintf(w, "data: %s\n", line)
    }
    _, _ = io.WriteString(w, "\n")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        w.WriteHeader(http.StatusOK)
        return
    }
    defer unsub()
    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()
    // Initial flush of headers
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case b, ok := <-ch:
            if !ok {
                return
            }
            writeEvent(w, "board", b)
            flusher.Flush()
        }
    }
}
