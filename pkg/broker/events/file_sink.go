package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSink appends events as JSON lines to a rolling per-day log file named
// events-YYYY-MM-DD.log inside a fixed directory. The file rolls over on the
// first record after midnight; old files are left in place for the operator
// to prune.
//
// Thread Safety: a single mutex serializes writes, so interleaved Record
// calls never corrupt a line.
type FileSink struct {
	dir string

	mu      sync.Mutex
	current *os.File
	day     string
}

// NewFileSink creates a sink writing into dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Record appends one event to today's log file.
func (s *FileSink) Record(event Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day := event.Time.Format("2006-01-02")
	if s.current == nil || day != s.day {
		if s.current != nil {
			_ = s.current.Close()
		}
		path := filepath.Join(s.dir, "events-"+day+".log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			s.current = nil
			return fmt.Errorf("failed to open event log %s: %w", path, err)
		}
		s.current = f
		s.day = day
	}

	if _, err := s.current.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Close closes the current log file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	return err
}
