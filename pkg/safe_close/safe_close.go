// Package safe_close provides coordinated shutdown for long-running components.
// Components attach themselves and are notified through a shared close signal;
// WaitClosed blocks until every attached component reports done.
package safe_close

import (
	"sync"
)

type SafeClose struct {
	wg sync.WaitGroup

	mu          sync.Mutex
	closeSignal chan struct{}
	closed      bool
	err         error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach registers a component goroutine. The component must call done()
// exactly once when it has fully stopped, and should begin shutting down
// when closeSignal is closed.
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() {
		once.Do(s.wg.Done)
	}
	go f(done, s.closeSignal)
}

// SendCloseSignal asks all attached components to stop. The first non-nil err
// wins; subsequent calls are no-ops.
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.closeSignal)
}

// CloseSignal exposes the signal channel for components that cannot use Attach.
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed blocks until every attached component has called done, then
// returns the error passed to the first SendCloseSignal call, if any.
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
