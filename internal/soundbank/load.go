package soundbank

import (
	"bytes"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/soundbank/internal/errors"
	"github.com/tphakala/soundbank/internal/logger"
)

// bankFile is the on-disk layout of a sound bank
type bankFile struct {
	Clips      map[string]time.Duration `yaml:"clips"`
	Categories []*Category              `yaml:"categories"`
}

// Load parses a YAML sound bank and builds a registry from it
func Load(r io.Reader) (*Registry, error) {
	var bank bankFile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bank); err != nil && err != io.EOF {
		var enhanced *errors.EnhancedError
		if errors.As(err, &enhanced) {
			return nil, err
		}
		return nil, errors.New(err).
			Component(ComponentSoundBank).
			Category(errors.CategoryFileParsing).
			Context("operation", "decode_bank").
			Build()
	}

	reg, err := NewRegistry(bank.Clips, bank.Categories...)
	if err != nil {
		return nil, err
	}

	stats := reg.Stats()
	GetLogger().Debug("sound bank loaded",
		logger.Int("categories", stats.Categories),
		logger.Int("items", stats.Items),
		logger.Int("sub_items", stats.SubItems),
		logger.Int("clips", stats.Clips))
	return reg, nil
}

// LoadFile reads and parses the sound bank at path
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, errors.New(err).
			Component(ComponentSoundBank).
			Category(errors.CategoryFileIO).
			Context("operation", "read_bank").
			Context("path", path).
			Build()
	}
	return Load(bytes.NewReader(data))
}

// GetLogger returns the soundbank package logger
func GetLogger() logger.Logger {
	return logger.Global().Module("soundbank")
}
