package proxy

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// ControlState records the most recent climate command issued through the proxy.
// Dashboards poll it to render a countdown; it survives proxy restarts so a
// restart during a preconditioning run does not lose the timer.
type ControlState struct {
	// ActiveUntil is when the requested run is expected to end.
	ActiveUntil time.Time `json:"activeUntil"`
	// Parameter is the requested target temperature in degrees Celsius.
	Parameter float64 `json:"parameter"`
}

// Active returns true if the recorded run is still in progress at now.
func (s *ControlState) Active(now time.Time) bool {
	return s != nil && now.Before(s.ActiveUntil)
}

// StateStore persists the ControlState across proxy restarts.
type StateStore interface {
	// Load returns the stored state, or nil when none has been recorded.
	Load() (*ControlState, error)
	Save(state ControlState) error
	Clear() error
}

// FileStateStore keeps the ControlState in a JSON file.
type FileStateStore struct {
	Path string
	lock sync.Mutex
}

func (f *FileStateStore) Load() (*ControlState, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state ControlState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (f *FileStateStore) Save(state ControlState) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	data, err := json.Marshal(&state)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0644)
}

func (f *FileStateStore) Clear() error {
	f.lock.Lock()
	defer f.lock.Unlock()

	err := os.Remove(f.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
