package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrSourceNotFound is returned when the source configuration file does
// not exist.
var ErrSourceNotFound = errors.New("source configuration file not found")

// LoadSource loads and validates a source configuration from a YAML file.
// Pattern-valued fields are compiled during unmarshalling, so the
// returned Source is ready for the extraction engine.
func LoadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided source path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrSourceNotFound)
		}
		return nil, err
	}

	src, err := ParseSource(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// ParseSource parses and validates source YAML.
//
// Design decision: We reject unknown fields rather than ignoring them
// because a typo in a selector key would otherwise silently disable the
// extraction step it was meant to configure.
func ParseSource(data []byte) (*Source, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var src Source
	if err := dec.Decode(&src); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("source: empty configuration")
		}
		return nil, err
	}

	if err := src.Validate(); err != nil {
		return nil, err
	}

	return &src, nil
}
