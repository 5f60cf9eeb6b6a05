// Package session persists research sessions so an interactive run can
// pick up the question history from the previous one.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxSessions is the maximum number of sessions to retain on disk
	MaxSessions = 10
	// CurrentSessionLink is the name of the symlink to the current session
	CurrentSessionLink = "current.json"
)

// Exchange is one answered question within a session
type Exchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Session is a saved run of the interactive assistant
type Session struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Model     string     `json:"model"`
	Exchanges []Exchange `json:"exchanges"`
}

// Questions returns the questions asked in this session, oldest first.
// This is the shape the agent expects as conversation history.
func (s *Session) Questions() []string {
	qs := make([]string, 0, len(s.Exchanges))
	for _, ex := range s.Exchanges {
		qs = append(qs, ex.Question)
	}
	return qs
}

// Info summarizes a session for listing
type Info struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Model     string
	Preview   string // First question asked
	Count     int    // Number of exchanges
}

// Manager handles session persistence under a sessions directory
type Manager struct {
	dir     string
	current *Session
}

// NewManager creates a manager rooted at ~/.marketscout/sessions
func NewManager() (*Manager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewManagerAt(filepath.Join(home, ".marketscout", "sessions"))
}

// NewManagerAt creates a manager rooted at the given directory
func NewManagerAt(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Record appends an exchange to the current session and writes it to disk.
// A new session is started on first use.
func (m *Manager) Record(question, answer, model string) error {
	if m.current == nil {
		s, err := m.StartNew()
		if err != nil {
			return err
		}
		m.current = s
	}

	m.current.Exchanges = append(m.current.Exchanges, Exchange{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
	m.current.Model = model
	m.current.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(m.current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(m.sessionPath(m.current.ID), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := m.updateCurrentLink(m.current.ID); err != nil {
		return fmt.Errorf("failed to update current link: %w", err)
	}

	if err := m.cleanupOldSessions(); err != nil {
		// Non-fatal
		fmt.Fprintf(os.Stderr, "Warning: failed to cleanup old sessions: %v\n", err)
	}
	return nil
}

// Load loads a session by ID
func (m *Manager) Load(id string) (*Session, error) {
	data, err := os.ReadFile(m.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &s, nil
}

// List returns information about all saved sessions, most recent first
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessions []Info
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || name == CurrentSessionLink {
			continue
		}

		s, err := m.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue // Skip corrupted sessions
		}

		info := Info{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
			Model:     s.Model,
			Count:     len(s.Exchanges),
		}
		if len(s.Exchanges) > 0 {
			info.Preview = truncate(s.Exchanges[0].Question, 50)
		}
		sessions = append(sessions, info)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// GetCurrent returns the most recent session (from the symlink) if one exists
func (m *Manager) GetCurrent() (*Session, error) {
	linkPath := filepath.Join(m.dir, CurrentSessionLink)

	target, err := os.Readlink(linkPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read current session link: %w", err)
	}

	id := strings.TrimSuffix(filepath.Base(target), ".json")
	s, err := m.Load(id)
	if err != nil {
		// Link points at a missing or corrupted session, drop it
		_ = os.Remove(linkPath)
		return nil, nil
	}
	return s, nil
}

// Resume makes the given session current so new exchanges extend it
func (m *Manager) Resume(s *Session) {
	m.current = s
}

// StartNew creates a new empty session with a fresh ID
func (m *Manager) StartNew() (*Session, error) {
	id, err := generateID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.current = s
	return s, nil
}

// Delete removes a session by ID
func (m *Manager) Delete(id string) error {
	if err := os.Remove(m.sessionPath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("session not found: %s", id)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	linkPath := filepath.Join(m.dir, CurrentSessionLink)
	if target, err := os.Readlink(linkPath); err == nil {
		if strings.TrimSuffix(filepath.Base(target), ".json") == id {
			_ = os.Remove(linkPath)
		}
	}
	if m.current != nil && m.current.ID == id {
		m.current = nil
	}
	return nil
}

func (m *Manager) sessionPath(id string) string {
	return filepath.Join(m.dir, id+".json")
}

func (m *Manager) updateCurrentLink(id string) error {
	linkPath := filepath.Join(m.dir, CurrentSessionLink)
	_ = os.Remove(linkPath)
	return os.Symlink(id+".json", linkPath)
}

func (m *Manager) cleanupOldSessions() error {
	sessions, err := m.List()
	if err != nil {
		return err
	}
	if len(sessions) <= MaxSessions {
		return nil
	}
	// List is sorted most recent first, so the tail is oldest
	for i := MaxSessions; i < len(sessions); i++ {
		_ = os.Remove(m.sessionPath(sessions[i].ID))
	}
	return nil
}

func generateID() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatRelativeTime formats a time as a short relative string for listings
func FormatRelativeTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		if t.Year() == now.Year() {
			return t.Format("Jan 2")
		}
		return t.Format("Jan 2, 2006")
	}
}
