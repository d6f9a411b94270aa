package service

import (
	"strings"
	"sync"

	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/metrics"
)

// ConsoleLogSink is the append-only record of page console messages for
// the lifetime of the process.
type ConsoleLogSink struct {
	mu      sync.Mutex
	entries []entity.ConsoleEntry
}

func NewConsoleLogSink() *ConsoleLogSink {
	return &ConsoleLogSink{}
}

func (s *ConsoleLogSink) Record(e entity.ConsoleEntry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	metrics.ObserveConsoleEntry()
}

// Note records a server-side line alongside page messages.
func (s *ConsoleLogSink) Note(text string) {
	s.Record(entity.ConsoleEntry{Level: "server", Text: text})
}

func (s *ConsoleLogSink) Entries() []entity.ConsoleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.ConsoleEntry(nil), s.entries...)
}

func (s *ConsoleLogSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Text renders every entry as "[level] text", one per line.
func (s *ConsoleLogSink) Text() string {
	entries := s.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}
