package testutil

import "github.com/vk/pipesgo/internal/pipe"

// SimpleModule is a test helper for easily creating a mock module that
// registers the given definitions under one unit name.
type SimpleModule struct {
	Unit        string
	Definitions []*pipe.Definition
}

// Register implements the pipe.Module interface.
func (m *SimpleModule) Register(r *pipe.Registry) error {
	unit := m.Unit
	if unit == "" {
		unit = "test"
	}
	for _, d := range m.Definitions {
		if _, err := r.Register(unit, d); err != nil {
			return err
		}
	}
	return nil
}
