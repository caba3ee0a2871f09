// Package workspace persists named snapshots of the window stack so a set
// of windows can be reopened later.
package workspace

import (
	"fmt"
	"time"

	"github.com/1broseidon/nativewm/internal/config"
)

// Snapshot is a saved window stack, bottom-most window first.
type Snapshot struct {
	Name    string              `json:"name"`
	SavedAt time.Time           `json:"saved_at"`
	Windows []config.WindowSpec `json:"windows"`
}

// Validate checks the name and every window description.
func (s *Snapshot) Validate() error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	for i, w := range s.Windows {
		if err := w.Validate(); err != nil {
			return &config.ValidationError{Path: fmt.Sprintf("windows.%d", i), Err: err}
		}
	}
	return nil
}
