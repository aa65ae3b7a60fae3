package session

// EventKind identifies what happened to a visitor's session.
type EventKind string

const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
)

// Event is broadcast to every subscriber after a Commit or Clear.
type Event struct {
	Kind      EventKind
	VisitorID string
}

// Subscribe registers a new observer and returns its channel together with an
// unsubscribe func. The channel is buffered; a subscriber that stops draining
// loses events rather than blocking commits.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 8)
	s.subs[id] = ch

	unsubscribe := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(existing)
		}
	}
	return ch, unsubscribe
}

func (s *Store) broadcast(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
