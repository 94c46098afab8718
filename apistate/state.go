// Package apistate tracks the loading/error/data lifecycle of API calls.
package apistate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/rs/zerolog/log"
)

// Call is one API operation whose response payload becomes the state's data.
type Call[T any] func(ctx context.Context) (*apiclient.Response[T], error)

// Snapshot is the state visible to observers at one point in time.
type Snapshot[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Error   string // Empty when the last settled call succeeded
}

// State wraps API calls with a loading flag, the last error message and the last
// payload. Concurrent Execute calls on one State share it and the last write wins;
// use one State per call site that needs its own status.
type State[T any] struct {
	mu        sync.Mutex
	snap      Snapshot[T]
	notifier  notify.Notifier
	observers map[int]func(Snapshot[T])
	nextID    int
}

func New[T any](notifier notify.Notifier) *State[T] {
	if notifier == nil {
		notifier = notify.Default()
	}
	return &State[T]{notifier: notifier, observers: make(map[int]func(Snapshot[T]))}
}

// Execute runs call. Loading is set and the error cleared before call starts.
// On success the payload is stored and returned. On failure the data is left
// alone, the message is stored, one error notification is sent and the error
// is returned. A panicking call is reported as a failure.
func (s *State[T]) Execute(ctx context.Context, call Call[T]) (result T, err error) {
	id := uuid.NewString()
	s.update(func(snap *Snapshot[T]) {
		snap.Loading = true
		snap.Error = ""
	})

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("apistate: call panicked: %v", r)
			s.fail(id, err)
		}
	}()

	resp, err := call(ctx)
	if err != nil {
		s.fail(id, err)
		return result, err
	}
	if resp != nil {
		result = resp.Data
	}
	s.update(func(snap *Snapshot[T]) {
		snap.Data = result
		snap.HasData = true
		snap.Loading = false
	})
	return result, nil
}

func (s *State[T]) fail(id string, err error) {
	msg := apiclient.Message(err)
	log.Debug().Str("call", id).Err(err).Msg("apistate: call failed")
	s.update(func(snap *Snapshot[T]) {
		snap.Error = msg
		snap.Loading = false
	})
	s.notifier.Notify(notify.Error(msg))
}

// Reset returns the state to its initial values. It does not cancel a call in
// flight; that call still writes its outcome when it settles.
func (s *State[T]) Reset() {
	s.update(func(snap *Snapshot[T]) {
		*snap = Snapshot[T]{}
	})
}

func (s *State[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *State[T]) Data() (T, bool) {
	snap := s.Snapshot()
	return snap.Data, snap.HasData
}

func (s *State[T]) Loading() bool {
	return s.Snapshot().Loading
}

func (s *State[T]) Err() string {
	return s.Snapshot().Error
}

// Observe calls fn with every new snapshot until the returned func is called.
func (s *State[T]) Observe(fn func(Snapshot[T])) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *State[T]) update(mutate func(*Snapshot[T])) {
	s.mu.Lock()
	mutate(&s.snap)
	snap := s.snap
	observers := make([]func(Snapshot[T]), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}
