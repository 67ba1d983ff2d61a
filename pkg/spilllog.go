// Package pkg provides small generic utilities for cujbench.
package pkg

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// SpillLog is an append-only, gob-encoded log of items of type T spilled to
// disk. The run workflow appends each step result as it completes so an
// interrupted benchmark run still leaves its partial results on disk.
type SpillLog[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(fn func(index uint64, item T) error) error
	Close() error
}

type spillLog[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// NewSpillLog creates a SpillLog backed by a fresh file in dir; an empty dir
// uses the system temp directory.
func NewSpillLog[T any](dir string) (SpillLog[T], error) {
	if dir == "" {
		dir = os.TempDir()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create spill directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "spill-*.gob")
	if err != nil {
		return nil, fmt.Errorf("failed to create spill file: %w", err)
	}

	slog.Debug("created spill log", "path", file.Name())

	return &spillLog[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append encodes one item at the end of the log.
func (s *spillLog[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(item); err != nil {
		slog.Error("failed to encode spilled item", "path", s.path, "index", s.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	s.length++

	return nil
}

// Len returns the number of items appended so far.
func (s *spillLog[T]) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.length
}

// Path returns the on-disk location of the log.
func (s *spillLog[T]) Path() string {
	return s.path
}

// Range decodes every item in append order, stopping at the first callback
// error.
func (s *spillLog[T]) Range(fn func(index uint64, item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open spill log: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Error("failed to close spill log", "path", s.path, "error", closeErr)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := uint64(0); i < s.length; i++ {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return fmt.Errorf("failed to decode item at index %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close releases the underlying file.
func (s *spillLog[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	if err != nil {
		slog.Error("failed to close spill log", "path", s.path, "error", err)
		return err
	}

	return nil
}
