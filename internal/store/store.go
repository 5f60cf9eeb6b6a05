package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/marketscout/internal/compact"
)

// DefaultTTL is how long an unread entry survives before cleanup
const DefaultTTL = 30 * time.Minute

// Summary is the pointer handed to the agent in place of a full result
type Summary struct {
	ID       string
	ToolName string
	Args     map[string]any
	Digest   string
}

// entry holds a full tool result
type entry struct {
	toolName   string
	args       map[string]any
	result     string
	createdAt  time.Time
	accessedAt time.Time
}

// ResultStore keeps full tool results out of the model context. The agent
// carries Summary pointers and loads full payloads only when composing the
// final answer.
type ResultStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	done    chan struct{}
}

// New creates a result store. A ttl of zero or less uses DefaultTTL.
func New(ttl time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &ResultStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Save stores a full tool result and returns its pointer summary
func (s *ResultStore) Save(toolName string, args map[string]any, result string) Summary {
	id := generateID(toolName, args, result)
	now := time.Now()

	s.mu.Lock()
	s.entries[id] = &entry{
		toolName:   toolName,
		args:       args,
		result:     result,
		createdAt:  now,
		accessedAt: now,
	}
	s.mu.Unlock()

	return Summary{
		ID:       id,
		ToolName: toolName,
		Args:     args,
		Digest:   compact.DataSummary(result),
	}
}

// Load retrieves a full result by ID
func (s *ResultStore) Load(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return "", false
	}
	e.accessedAt = time.Now()
	return e.result, true
}

// Loaded pairs a full result with the ID it was stored under
type Loaded struct {
	ID   string
	Data string
}

// LoadMany retrieves full results for the given IDs, preserving order.
// Missing IDs are skipped.
func (s *ResultStore) LoadMany(ids []string) []Loaded {
	results := make([]Loaded, 0, len(ids))
	for _, id := range ids {
		if data, ok := s.Load(id); ok {
			results = append(results, Loaded{ID: id, Data: data})
		}
	}
	return results
}

// Describe builds a human-readable label for a tool invocation
func Describe(toolName string, args map[string]any) string {
	if len(args) == 0 {
		return toolName
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return fmt.Sprintf("%s(%s)", toolName, strings.Join(parts, ", "))
}

// Size returns the number of stored entries
func (s *ResultStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all entries
func (s *ResultStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
}

// Close stops the background cleanup goroutine
func (s *ResultStore) Close() {
	close(s.done)
}

// generateID hashes tool name, sorted args, and the result so repeated calls
// with fresh data get distinct IDs
func generateID(toolName string, args map[string]any, result string) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{toolName}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	parts = append(parts, result)

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:8])
}

func (s *ResultStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

func (s *ResultStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, e := range s.entries {
		if now.Sub(e.accessedAt) > s.ttl {
			delete(s.entries, id)
		}
	}
}
