// Package session persists minimal wizard state between client runs so
// an interrupted verification can resume polling instead of starting
// over.
package session

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/atinyakov/VeriFlow/internal/models"
)

// State is what survives a client restart: the job id and its last
// known status.
type State struct {
	VerificationID string        `json:"verificationId"`
	Status         models.Status `json:"status"`
}

// Resumable reports whether the saved job is still worth polling.
func (s State) Resumable() bool {
	return s.VerificationID != "" && !s.Status.Terminal()
}

// Store reads and writes the session file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the saved state. A missing file is not an error; ok is
// false when nothing was saved.
func (s *Store) Load() (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, false, nil
		}
		return State{}, false, err
	}
	defer f.Close()

	var st State
	if err := json.NewDecoder(f).Decode(&st); err != nil {
		return State{}, false, err
	}
	return st, st.VerificationID != "", nil
}

// Save writes the state, replacing any previous one.
func (s *Store) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(st)
}

// Clear removes the session file. Clearing an absent file is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
