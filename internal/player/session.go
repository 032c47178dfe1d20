package player

import "sync"

// Session scopes one [Handle] with its listener and analyser.
//
// Close releases all three in order and may be called any number of times.
type Session struct {
	ID uint64

	handle      Handle
	unsubscribe func()
	analyser    Analyser

	closeOnce sync.Once
	closeErr  error
}

func newSession(id uint64, h Handle, forward func(Event)) *Session {
	s := &Session{ID: id, handle: h}
	s.unsubscribe = h.Subscribe(func(ev Event) {
		ev.Session = id
		forward(ev)
	})
	return s
}

// Analyser returns the attached analyser, if any.
func (s *Session) Analyser() Analyser { return s.analyser }

// attachAnalyser taps the handle once per session.
func (s *Session) attachAnalyser() error {
	if s.analyser != nil {
		return nil
	}
	a, err := s.handle.Tap()
	if err != nil {
		return err
	}
	s.analyser = a
	return nil
}

// Close detaches the listener, disconnects the analyser and closes the handle.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		if s.analyser != nil {
			s.analyser.Disconnect()
			s.analyser = nil
		}
		s.closeErr = s.handle.Close()
	})
	return s.closeErr
}
