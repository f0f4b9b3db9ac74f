package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// CheckoutState survives between checkout runs so vendor groups placed by
// an earlier attempt are not submitted again.
type CheckoutState struct {
	SessionID string           `yaml:"session_id"`
	Completed map[string]int64 `yaml:"completed,omitempty"`
}

// LoadState reads the state file, starting a fresh session when it does not
// exist.
func LoadState(path string) (*CheckoutState, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &CheckoutState{SessionID: uuid.NewString(), Completed: map[string]int64{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkout state %s: %w", path, err)
	}
	var st CheckoutState
	if err := yaml.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("parse checkout state %s: %w", path, err)
	}
	if st.SessionID == "" {
		st.SessionID = uuid.NewString()
	}
	if st.Completed == nil {
		st.Completed = map[string]int64{}
	}
	return &st, nil
}

func SaveState(path string, st *CheckoutState) error {
	raw, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode checkout state: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write checkout state %s: %w", path, err)
	}
	return nil
}

// RemoveState deletes the state file once nothing is left to retry.
func RemoveState(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove checkout state %s: %w", path, err)
	}
	return nil
}
