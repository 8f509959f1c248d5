package cloudsync

import "time"

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseSyncing Phase = "syncing"
	PhaseSynced  Phase = "synced"
	PhaseError   Phase = "error"
)

// Status is what the UI shows about synchronisation.
type Status struct {
	Phase        Phase      `json:"phase"`
	Error        string     `json:"error,omitempty"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
	Revision     string     `json:"revision,omitempty"`
}

// Status returns the current status.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// Subscribe registers fn to receive every status change. fn must not block.
// The returned func removes the subscription.
func (s *Service) Subscribe(fn func(Status)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.subs, id)
	}
}

func (s *Service) setStatus(st Status) {
	s.mu.Lock()

	// A successful sync keeps its timestamp visible while the next one runs.
	if st.LastSyncedAt == nil && s.status.LastSyncedAt != nil {
		st.LastSyncedAt = s.status.LastSyncedAt
		if st.Revision == "" {
			st.Revision = s.status.Revision
		}
	}

	s.status = st

	subs := make([]func(Status), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}

	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}
