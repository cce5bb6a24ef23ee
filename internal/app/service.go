package app

import (
    "context"
    "errors"
    "io"
    "log/slog"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

// ErrNotFound is returned for unknown game ids.
var ErrNotFound = errors.New("game not found")

// GameState is the in-memory state tracked per game. Copies handed out by
// the service carry their own Session and can be read without locking.
type GameState struct {
    ID      string
    Session *domain.Session
    Created time.Time
    Updated time.Time
}

func (gs *GameState) clone() GameState {
    cp := *gs
    cp.Session = gs.Session.Clone()
    return cp
}

// subscriber guards its channel so a broadcast never sends after close.
type subscriber struct {
    mu     sync.Mutex
    ch     chan []byte
    closed bool
}

func (s *subscriber) close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.closed {
        s.closed = true
        close(s.ch)
    }
}

// offer delivers b without blocking. It reports false only when an open
// subscriber's buffer is full.
func (s *subscriber) offer(b []byte) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return true
    }
    select {
    case s.ch <- b:
        return true
    default:
        return false
    }
}

// Service owns every running game session and fans out updates to viewers.
type Service struct {
    mu      sync.Mutex
    games   map[string]*GameState
    subs    map[string]map[*subscriber]struct{}
    render  func(GameState) []byte
    bufSize int
    log     *slog.Logger
}

func nopRender(GameState) []byte { return nil }

// NewService creates a service with a renderer that encodes nothing.
func NewService(logger *slog.Logger) *Service {
    return NewServiceWithRenderer(logger, nopRender)
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(logger *slog.Logger, renderer func(GameState) []byte) *Service {
    if renderer == nil {
        renderer = nopRender
    }
    if logger == nil {
        logger = slog.New(slog.NewTextHandler(io.Discard, nil))
    }
    return &Service{
        games:   make(map[string]*GameState),
        subs:    make(map[string]map[*subscriber]struct{}),
        render:  renderer,
        bufSize: 1,
        log:     logger.With("component", "app"),
    }
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        renderer = nopRender
    }
    s.render = renderer
}

// SetSubscriberBuffer sets the channel capacity for new subscribers.
func (s *Service) SetSubscriberBuffer(n int) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if n < 1 {
        n = 1
    }
    s.bufSize = n
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    id := uuid.NewString()
    now := time.Now()
    gs := &GameState{ID: id, Session: domain.NewSession(), Created: now, Updated: now}
    s.games[id] = gs
    s.log.Info("game created", "game_id", id)
    cp := gs.clone()
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := gs.clone()
    return &cp, true
}

// Play submits the current turn's move. A rejected move leaves the game
// untouched and returns the unchanged state together with the error.
func (s *Service) Play(id string, sub, cell int) (*GameState, error) {
    return s.update(id, func(gs *GameState) error {
        mark := gs.Session.Turn()
        if _, err := gs.Session.Submit(sub, cell); err != nil {
            s.log.Debug("move rejected", "game_id", id, "sub", sub, "cell", cell, "mark", mark.String(), "reason", err)
            return err
        }
        s.log.Debug("move accepted", "game_id", id, "sub", sub, "cell", cell, "mark", mark.String(), "step", gs.Session.Cursor())
        if o := gs.Session.Outcome(); o.Finished() {
            s.log.Info("game finished", "game_id", id, "outcome", o.String(), "plies", gs.Session.Cursor())
        }
        return nil
    })
}

// Navigate moves the game's history cursor.
func (s *Service) Navigate(id string, step int) (*GameState, error) {
    return s.update(id, func(gs *GameState) error {
        if _, err := gs.Session.NavigateTo(step); err != nil {
            return err
        }
        s.log.Debug("history navigated", "game_id", id, "step", step)
        return nil
    })
}

// update applies fn under the lock and, when it succeeds, broadcasts the
// new state to subscribers.
func (s *Service) update(id string, fn func(*GameState) error) (*GameState, error) {
    var toDrop []*subscriber

    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if err := fn(gs); err != nil {
        cp := gs.clone()
        s.mu.Unlock()
        return &cp, err
    }
    gs.Updated = time.Now()

    // Snapshot state and subscribers
    cp := gs.clone()
    subs := s.copySubsLocked(id)
    payload := s.render(cp)
    s.mu.Unlock()

    // Fan-out; drop slow subscribers by closing and marking for deletion
    for sub := range subs {
        if !sub.offer(payload) {
            sub.close()
            toDrop = append(toDrop, sub)
        }
    }
    if len(toDrop) > 0 {
        s.mu.Lock()
        for _, sub := range toDrop {
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
        }
        s.mu.Unlock()
        s.log.Warn("dropped slow subscribers", "game_id", id, "count", len(toDrop))
    }
    return &cp, nil
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func; the subscription also ends when ctx is done.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.games[id]; !ok {
        return nil, func() {}, ErrNotFound
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, s.bufSize)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
                if len(set) == 0 {
                    delete(s.subs, id)
                }
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub, nil
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}
