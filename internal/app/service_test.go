package app

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

// minimal renderer for tests: encode history length as bytes
func testRenderer(gs GameState) []byte {
    return []byte(fmt.Sprintf("steps=%d cursor=%d", gs.Session.Len(), gs.Session.Cursor()))
}

func TestCreateAndGet(t *testing.T) {
    s := NewServiceWithRenderer(nil, testRenderer)
    gs, err := s.CreateGame()
    if err != nil {
        t.Fatalf("CreateGame error: %v", err)
    }
    if gs.ID == "" {
        t.Fatalf("expected non-empty game ID")
    }
    if gs.Session.Turn() != domain.X {
        t.Fatalf("expected initial turn X")
    }
    if gs.Created.IsZero() || gs.Updated.IsZero() {
        t.Fatalf("expected timestamps to be set")
    }
    got, ok := s.Get(gs.ID)
    if !ok || got.ID != gs.ID {
        t.Fatalf("Get should find created game")
    }
    if _, ok := s.Get("missing"); ok {
        t.Fatalf("Get should not find unknown game")
    }
}

func TestPlayAppliesMoveAndFlipsTurn(t *testing.T) {
    s := NewService(nil)
    gs, _ := s.CreateGame()

    st, err := s.Play(gs.ID, 4, 4)
    if err != nil {
        t.Fatalf("X play failed: %v", err)
    }
    cur := st.Session.Current()
    if cur.Boards[4][4] != domain.X || st.Session.Turn() != domain.O || cur.Constraint != 4 {
        t.Fatalf("unexpected state after X move: turn=%v constraint=%d cell=%v", st.Session.Turn(), cur.Constraint, cur.Boards[4][4])
    }
}

func TestPlayRejectedLeavesStateUnchanged(t *testing.T) {
    s := NewService(nil)
    gs, _ := s.CreateGame()
    if _, err := s.Play(gs.ID, 4, 4); err != nil {
        t.Fatalf("play failed: %v", err)
    }

    st, err := s.Play(gs.ID, 0, 0)
    if !errors.Is(err, domain.ErrWrongBoard) {
        t.Fatalf("expected ErrWrongBoard, got %v", err)
    }
    if st == nil || st.Session.Len() != 2 {
        t.Fatalf("expected unchanged state with 2 steps, got %+v", st)
    }
    latest, _ := s.Get(gs.ID)
    if latest.Session.Len() != 2 || latest.Session.Turn() != domain.O {
        t.Fatalf("rejected move changed state: len=%d turn=%v", latest.Session.Len(), latest.Session.Turn())
    }
}

func TestPlayUnknownGame(t *testing.T) {
    s := NewService(nil)
    if _, err := s.Play("nope", 0, 0); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
    if _, err := s.Navigate("nope", 0); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestNavigateAndTruncate(t *testing.T) {
    s := NewService(nil)
    gs, _ := s.CreateGame()
    for _, m := range [][2]int{{4, 4}, {4, 0}, {0, 0}} {
        if _, err := s.Play(gs.ID, m[0], m[1]); err != nil {
            t.Fatalf("play %v: %v", m, err)
        }
    }
    st, err := s.Navigate(gs.ID, 1)
    if err != nil {
        t.Fatalf("navigate: %v", err)
    }
    if st.Session.Len() != 4 || st.Session.Cursor() != 1 || st.Session.Turn() != domain.O {
        t.Fatalf("unexpected state after navigate: len=%d cursor=%d", st.Session.Len(), st.Session.Cursor())
    }
    if _, err := s.Navigate(gs.ID, 9); !errors.Is(err, domain.ErrNoSuchStep) {
        t.Fatalf("expected ErrNoSuchStep, got %v", err)
    }
    st, err = s.Play(gs.ID, 4, 8)
    if err != nil {
        t.Fatalf("play from past: %v", err)
    }
    if st.Session.Len() != 3 || st.Session.Cursor() != 2 {
        t.Fatalf("expected truncated history, len=%d cursor=%d", st.Session.Len(), st.Session.Cursor())
    }
}

func TestReturnedStateIsACopy(t *testing.T) {
    s := NewService(nil)
    gs, _ := s.CreateGame()
    if _, err := gs.Session.Submit(4, 4); err != nil {
        t.Fatalf("submit on copy: %v", err)
    }
    latest, _ := s.Get(gs.ID)
    if latest.Session.Len() != 1 {
        t.Fatalf("mutating a copy leaked into the service, len=%d", latest.Session.Len())
    }
}

func TestSubscribeAndBroadcast(t *testing.T) {
    s := NewServiceWithRenderer(nil, testRenderer)
    gs, _ := s.CreateGame()

    ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
    defer cancel()
    ch, unsub, err := s.Subscribe(ctx, gs.ID)
    if err != nil {
        t.Fatalf("subscribe: %v", err)
    }
    defer unsub()

    if _, err := s.Play(gs.ID, 4, 4); err != nil {
        t.Fatalf("play failed: %v", err)
    }

    select {
    case b, ok := <-ch:
        if !ok {
            t.Fatalf("channel closed unexpectedly")
        }
        if string(b) != "steps=2 cursor=1" {
            t.Fatalf("unexpected broadcast payload: %q", string(b))
        }
    case <-ctx.Done():
        t.Fatalf("timed out waiting for broadcast")
    }
}

func TestRejectedMoveDoesNotBroadcast(t *testing.T) {
    s := NewServiceWithRenderer(nil, testRenderer)
    gs, _ := s.CreateGame()
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    ch, unsub, _ := s.Subscribe(ctx, gs.ID)
    defer unsub()

    if _, err := s.Play(gs.ID, 9, 9); err == nil {
        t.Fatalf("expected rejection")
    }
    select {
    case b := <-ch:
        t.Fatalf("unexpected broadcast %q", string(b))
    default:
    }
}

func TestSubscribeUnknownGame(t *testing.T) {
    s := NewService(nil)
    if _, _, err := s.Subscribe(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestDropSlowSubscriber(t *testing.T) {
    s := NewServiceWithRenderer(nil, testRenderer)
    gs, _ := s.CreateGame()

    // Slow subscriber: never read
    ctxSlow, cancelSlow := context.WithCancel(context.Background())
    defer cancelSlow()
    slowCh, _, _ := s.Subscribe(ctxSlow, gs.ID)

    ctxFast, cancelFast := context.WithTimeout(context.Background(), time.Second*2)
    defer cancelFast()
    fastCh, unsubFast, _ := s.Subscribe(ctxFast, gs.ID)
    defer unsubFast()

    // Fast reader drains between updates; slow overflows on the second.
    for _, m := range [][2]int{{4, 4}, {4, 0}} {
        if _, err := s.Play(gs.ID, m[0], m[1]); err != nil {
            t.Fatalf("play %v: %v", m, err)
        }
        select {
        case <-fastCh:
        case <-ctxFast.Done():
            t.Fatalf("fast subscriber did not receive update in time")
        }
    }

    // Slow subscriber got the first payload, then was closed.
    if _, ok := <-slowCh; !ok {
        t.Fatalf("expected first buffered payload on slow subscriber")
    }
    select {
    case _, ok := <-slowCh:
        if ok {
            t.Fatalf("expected slow subscriber channel to be closed")
        }
    case <-time.After(time.Second):
        t.Fatalf("slow subscriber channel not closed")
    }
}

func TestUnsubscribeDuringBroadcast(t *testing.T) {
    s := NewServiceWithRenderer(nil, testRenderer)
    gs, _ := s.CreateGame()

    var unsubs []func()
    for i := 0; i < 8; i++ {
        _, unsub, err := s.Subscribe(context.Background(), gs.ID)
        if err != nil {
            t.Fatalf("subscribe %d: %v", i, err)
        }
        unsubs = append(unsubs, unsub)
    }

    // Closing subscribers while a move fans out must neither panic nor race.
    var wg sync.WaitGroup
    wg.Add(1 + len(unsubs))
    go func() {
        defer wg.Done()
        if _, err := s.Play(gs.ID, 4, 4); err != nil {
            t.Errorf("play failed: %v", err)
        }
    }()
    for _, unsub := range unsubs {
        go func(unsub func()) {
            defer wg.Done()
            unsub()
        }(unsub)
    }
    wg.Wait()

    if _, err := s.Play(gs.ID, 4, 0); err != nil {
        t.Fatalf("play after unsubscribe failed: %v", err)
    }
}
