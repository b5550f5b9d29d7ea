package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func startSupervisor(t *testing.T, s *Supervisor) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestSupervisor_NeverServesTokenTwice(t *testing.T) {
	h := &counting{}
	s := NewSupervisor(h, Config{Capacity: Capacity})
	startSupervisor(t, s)

	const requesters = 200
	tokens := make(chan Token, requesters)
	errs := make(chan error, requesters)

	var wg sync.WaitGroup
	for range requesters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			tok, err := s.Acquire(ctx)
			if err != nil {
				errs <- err
				return
			}
			tokens <- tok
			if st := s.Stats(); st.Ready < 0 {
				errs <- errors.New("ready supply went negative")
			}
		}()
	}
	wg.Wait()
	close(tokens)
	close(errs)

	for err := range errs {
		t.Errorf("Acquire() error = %v", err)
	}

	seen := make(map[Token]bool, requesters)
	for tok := range tokens {
		if seen[tok] {
			t.Errorf("token %s served twice", string(tok))
		}
		seen[tok] = true
	}
	if len(seen) != requesters {
		t.Errorf("got %d distinct tokens, want %d", len(seen), requesters)
	}
	if st := s.Stats(); st.Reboots != 0 {
		t.Errorf("Reboots = %d, want 0", st.Reboots)
	}
}

func TestSupervisor_RebootsOnHandshakeFailure(t *testing.T) {
	h := HandshakeFunc(func(context.Context) (Token, error) {
		return "", errors.New("upstream down")
	})
	s := NewSupervisor(h, Config{Capacity: 2, RestartDelay: time.Millisecond})
	cancel, done := startSupervisor(t, s)

	var samples []int64
	for len(samples) < 3 {
		prev := s.Stats().Reboots
		waitFor(t, "another reboot", func() bool { return s.Stats().Reboots > prev })
		samples = append(samples, s.Stats().Reboots)
	}
	for i := 1; i < len(samples); i++ {
		if samples[i] <= samples[i-1] {
			t.Errorf("reboot counter not strictly increasing: %v", samples)
		}
	}

	select {
	case err := <-done:
		t.Fatalf("Run() exited on its own: %v", err)
	default:
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() after cancel = %v, want context.Canceled", err)
	}
}

func TestSupervisor_AcquireHonorsContext(t *testing.T) {
	block := HandshakeFunc(func(ctx context.Context) (Token, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	s := NewSupervisor(block, Config{Capacity: 1})
	startSupervisor(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := s.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() = %v, want DeadlineExceeded", err)
	}
}

func TestSupervisor_AcquireAfterRestart(t *testing.T) {
	var mu sync.Mutex
	failed := false
	h := HandshakeFunc(func(context.Context) (Token, error) {
		mu.Lock()
		defer mu.Unlock()
		if !failed {
			failed = true
			return "", errors.New("transient")
		}
		return "fresh", nil
	})
	s := NewSupervisor(h, Config{Capacity: 1, RestartDelay: -1})
	startSupervisor(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var tok Token
	var err error
	for {
		tok, err = s.Acquire(ctx)
		if !errors.Is(err, ErrPoolRestarted) {
			break
		}
	}
	if err != nil {
		t.Fatalf("Acquire() = %v", err)
	}
	if string(tok) != "fresh" {
		t.Errorf("Acquire() = %q, want fresh", string(tok))
	}
	if got := s.Stats().Reboots; got < 1 {
		t.Errorf("Reboots = %d, want >= 1", got)
	}
}

func TestSupervisor_Defaults(t *testing.T) {
	s := NewSupervisor(&counting{}, Config{})
	if s.config.Capacity != Capacity {
		t.Errorf("Capacity = %d, want %d", s.config.Capacity, Capacity)
	}
	if s.config.QueueSize != 2*Capacity {
		t.Errorf("QueueSize = %d, want %d", s.config.QueueSize, 2*Capacity)
	}
	if s.config.RestartDelay != DefaultRestartDelay {
		t.Errorf("RestartDelay = %v, want %v", s.config.RestartDelay, DefaultRestartDelay)
	}
	if s.Stats().Running {
		t.Error("Running = true before Run")
	}
}

func TestSupervisor_AcquireAfterStop(t *testing.T) {
	s := NewSupervisor(&counting{}, Config{})
	cancel, done := startSupervisor(t, s)
	cancel()
	<-done

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	start := time.Now()
	if _, err := s.Acquire(ctx); !errors.Is(err, ErrStopped) {
		t.Fatalf("Acquire() error = %v, want ErrStopped", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Acquire() took %v after stop", elapsed)
	}
}

func TestSupervisor_StopFailsQueuedRequests(t *testing.T) {
	// Handshakes never finish, so every request queues behind the first.
	stuck := HandshakeFunc(func(ctx context.Context) (Token, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	s := NewSupervisor(stuck, Config{Capacity: 2})
	cancel, done := startSupervisor(t, s)

	const waiting = 4
	errs := make(chan error, waiting)
	for range waiting {
		go func() {
			ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_, err := s.Acquire(ctx)
			errs <- err
		}()
	}
	waitFor(t, "a request to be held", func() bool { return s.Stats().Exhausted == 1 })

	cancel()
	<-done

	for range waiting {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrStopped) && !errors.Is(err, ErrPoolRestarted) {
				t.Errorf("Acquire() error = %v, want ErrStopped or ErrPoolRestarted", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Acquire() still blocked after the supervisor stopped")
		}
	}
}
