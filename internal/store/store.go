// ABOUTME: Conversation store keyed by tenant with append-only message logs.
// ABOUTME: Per-tenant locking so concurrent tenants never contend with each other.

package store

import (
	"strings"
	"sync"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation record. The assistant record's Text starts
// empty and grows by append-only concatenation while its reply streams.
type Message struct {
	ID       string            `json:"id"`
	Role     Role              `json:"role"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// tenantLog holds one tenant's ordered message history. Its mutex serializes
// appends, in-place text mutation, and history snapshots for that tenant only.
type tenantLog struct {
	mu       sync.Mutex
	messages []Message
}

// Store maps tenant ids to their conversation logs. Tenants are created lazily
// on first write and live for the process lifetime; nothing is persisted.
// Losing history on restart is an accepted limitation, not a bug.
type Store struct {
	mu      sync.RWMutex
	tenants map[string]*tenantLog
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tenants: make(map[string]*tenantLog),
	}
}

// tenant returns the log for the given tenant. When create is true a missing
// log is created; otherwise nil is returned for unseen tenants.
func (s *Store) tenant(id string, create bool) *tenantLog {
	s.mu.RLock()
	log, ok := s.tenants[id]
	s.mu.RUnlock()
	if ok || !create {
		return log
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if log, ok = s.tenants[id]; ok {
		return log
	}
	log = &tenantLog{}
	s.tenants[id] = log
	return log
}

// Append adds a message to the end of the tenant's log, creating the log if
// absent. Duplicate ids are a caller error; the store does not reject them.
func (s *Store) Append(tenant string, msg Message) {
	log := s.tenant(tenant, true)
	log.mu.Lock()
	defer log.mu.Unlock()
	log.messages = append(log.messages, msg)
}

// Get returns a copy of the message with the given id, or false if the tenant
// or message does not exist. Absence is "not yet created", not an error.
func (s *Store) Get(tenant, id string) (Message, bool) {
	log := s.tenant(tenant, false)
	if log == nil {
		return Message{}, false
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	for i := range log.messages {
		if log.messages[i].ID == id {
			return copyMessage(log.messages[i]), true
		}
	}
	return Message{}, false
}

// AppendText concatenates chunk onto the message's text, inserting a single
// separating space only when the existing text is non-empty and does not
// already end with one. Returns false if the message does not exist. The text
// of a record only ever grows.
func (s *Store) AppendText(tenant, id, chunk string) bool {
	log := s.tenant(tenant, false)
	if log == nil {
		return false
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	for i := range log.messages {
		if log.messages[i].ID != id {
			continue
		}
		text := log.messages[i].Text
		if text != "" && !strings.HasSuffix(text, " ") {
			text += " "
		}
		log.messages[i].Text = text + chunk
		return true
	}
	return false
}

// History returns an ordered snapshot of the tenant's log. Unseen tenants get
// an empty slice, never nil. In-flight streaming appends made before the call
// are visible in the snapshot.
func (s *Store) History(tenant string) []Message {
	log := s.tenant(tenant, false)
	if log == nil {
		return []Message{}
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	out := make([]Message, len(log.messages))
	for i := range log.messages {
		out[i] = copyMessage(log.messages[i])
	}
	return out
}

// copyMessage returns a deep copy so callers can never mutate stored records
// behind the store's back.
func copyMessage(m Message) Message {
	out := m
	if m.Metadata != nil {
		out.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
