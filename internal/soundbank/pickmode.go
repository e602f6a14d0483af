package soundbank

import (
	"gopkg.in/yaml.v3"

	"github.com/tphakala/soundbank/internal/errors"
)

// PickMode decides which sub-items of an item are played on a trigger
type PickMode int

const (
	// PickDisabled never picks automatically; callers choose a sub-item by index
	PickDisabled PickMode = iota
	// PickSequence cycles through sub-items in order
	PickSequence
	// PickSequenceRandomStart cycles in order from a random first index
	PickSequenceRandomStart
	// PickRandom draws by weight, repeats allowed
	PickRandom
	// PickRandomNotSameTwice draws by weight, never the previous index
	PickRandomNotSameTwice
	// PickAllSimultaneously starts every sub-item
	PickAllSimultaneously
	// PickTwoSimultaneously starts two different weighted draws
	PickTwoSimultaneously
)

var pickModeNames = [...]string{
	PickDisabled:            "disabled",
	PickSequence:            "sequence",
	PickSequenceRandomStart: "sequence_random_start",
	PickRandom:              "random",
	PickRandomNotSameTwice:  "random_not_same_twice",
	PickAllSimultaneously:   "all_simultaneously",
	PickTwoSimultaneously:   "two_simultaneously",
}

// String returns the YAML name of the mode
func (m PickMode) String() string {
	if m < 0 || int(m) >= len(pickModeNames) {
		return "unknown"
	}
	return pickModeNames[m]
}

// ParsePickMode converts a YAML name into a PickMode
func ParsePickMode(name string) (PickMode, error) {
	for i, n := range pickModeNames {
		if n == name {
			return PickMode(i), nil
		}
	}
	return PickDisabled, errors.New(ErrUnknownPickMode).
		Context("pick_mode", name).
		Build()
}

// UnmarshalYAML implements yaml.Unmarshaler
func (m *PickMode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	mode, err := ParsePickMode(name)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (m PickMode) MarshalYAML() (any, error) {
	return m.String(), nil
}
