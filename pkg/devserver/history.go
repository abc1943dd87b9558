package devserver

import "sync"

// Turn roles kept in session history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    string
	Content string
}

// HistoryStore keeps the most recent turns of each session in memory.
type HistoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
	maxTurns int
}

// NewHistoryStore returns a store keeping at most maxTurns per session;
// zero or less keeps everything.
func NewHistoryStore(maxTurns int) *HistoryStore {
	return &HistoryStore{sessions: make(map[string][]Turn), maxTurns: maxTurns}
}

func (h *HistoryStore) Append(sessionID string, t Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := append(h.sessions[sessionID], t)
	if h.maxTurns > 0 && len(turns) > h.maxTurns {
		turns = append([]Turn(nil), turns[len(turns)-h.maxTurns:]...)
	}
	h.sessions[sessionID] = turns
}

func (h *HistoryStore) Get(sessionID string) []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Turn(nil), h.sessions[sessionID]...)
}

// Sessions returns the number of known sessions.
func (h *HistoryStore) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
