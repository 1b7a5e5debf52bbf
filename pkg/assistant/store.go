package assistant

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"contract-assistant-be/pkg/document"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry in the conversation log.
type Message struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	IsStreaming bool   `json:"isStreaming,omitempty"`
}

// Store owns the full assistant state for one client: the contract
// registry, the conversation log, per-record document status, and the
// panel flag. All mutation goes through the store's mutex so readers
// always see a consistent view; callers never touch the fields directly.
type Store struct {
	mu sync.Mutex

	greeting string
	records  []ContractRecord
	messages []Message
	statuses map[string]document.Status
	panel    bool
}

// NewStore seeds the conversation with the greeting message.
func NewStore(greeting string) *Store {
	return &Store{
		greeting: greeting,
		messages: []Message{newMessage(RoleAssistant, greeting)},
		statuses: make(map[string]document.Status),
	}
}

func newMessage(role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content}
}

// --- Registry ---

// AddRecord attaches a record to the context. Returns ErrContextFull at
// capacity, a validation error for incomplete records, and (false, nil)
// for a duplicate notice id. On success an informational assistant
// message is appended, and when the record carries resource links the
// record's document status is set to processing (launching the actual
// jobs is the caller's business).
func (s *Store) AddRecord(rec ContractRecord) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) >= MaxContextRecords {
		return false, ErrContextFull
	}
	for _, existing := range s.records {
		if existing.NoticeID == rec.NoticeID {
			return false, nil
		}
	}

	s.records = append(s.records, rec)
	s.appendLocked(newMessage(RoleAssistant,
		fmt.Sprintf("Added %q to the context. You can now ask questions about this contract.", rec.Title)))
	if len(rec.ResourceLinks) > 0 {
		s.statuses[rec.NoticeID] = document.NewProcessingStatus(len(rec.ResourceLinks))
	}
	return true, nil
}

// RemoveRecord drops a record and its document status. No-op when the
// id is not in the context.
func (s *Store) RemoveRecord(noticeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.records {
		if rec.NoticeID == noticeID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			delete(s.statuses, noticeID)
			s.appendLocked(newMessage(RoleAssistant,
				fmt.Sprintf("Removed contract %s from the context.", noticeID)))
			return true
		}
	}
	return false
}

// ClearContext empties the registry and every document status.
func (s *Store) ClearContext() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.statuses = make(map[string]document.Status)
	s.appendLocked(newMessage(RoleAssistant, "Cleared all contracts from the context."))
}

// Records returns a copy of the current registry in insertion order.
func (s *Store) Records() []ContractRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRecords(s.records)
}

// HasRecord reports whether a notice id is currently in the context.
func (s *Store) HasRecord(noticeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.NoticeID == noticeID {
			return true
		}
	}
	return false
}

// --- Conversation ---

// AppendUser appends a user message and returns it.
func (s *Store) AppendUser(content string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := newMessage(RoleUser, content)
	s.appendLocked(msg)
	return msg
}

// AppendAssistant appends a completed assistant message and returns it.
func (s *Store) AppendAssistant(content string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := newMessage(RoleAssistant, content)
	s.appendLocked(msg)
	return msg
}

// BeginAssistantReply appends an empty streaming placeholder and returns
// its id for ApplyDelta/FinalizeReply.
func (s *Store) BeginAssistantReply() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := newMessage(RoleAssistant, "")
	msg.IsStreaming = true
	s.appendLocked(msg)
	return msg.ID
}

// ApplyDelta appends text to a streaming placeholder. No-op when the id
// is unknown or the message was already finalized, so late deltas after
// an abort are safe.
func (s *Store) ApplyDelta(id, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			if !s.messages[i].IsStreaming {
				return
			}
			s.messages[i].Content += delta
			return
		}
	}
}

// FinalizeReply freezes a streaming placeholder. A non-empty finalText
// replaces the accumulated content (the non-streaming path delivers the
// whole reply at once). Idempotent.
func (s *Store) FinalizeReply(id, finalText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			if !s.messages[i].IsStreaming {
				return
			}
			if finalText != "" {
				s.messages[i].Content = finalText
			}
			s.messages[i].IsStreaming = false
			return
		}
	}
}

// Messages returns a copy of the conversation log.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// ClearMessages resets the conversation to the greeting alone.
func (s *Store) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []Message{newMessage(RoleAssistant, s.greeting)}
}

// appendLocked appends and trims. The greeting at index 0 is pinned;
// the trim keeps it plus the most recent MaxHistory-1 messages.
func (s *Store) appendLocked(msg Message) {
	s.messages = append(s.messages, msg)
	if len(s.messages) > MaxHistory {
		keep := len(s.messages) - (MaxHistory - 1)
		trimmed := make([]Message, 0, MaxHistory)
		trimmed = append(trimmed, s.messages[0])
		trimmed = append(trimmed, s.messages[keep:]...)
		s.messages = trimmed
	}
}

// --- Document status ---

// SetDocumentStatus replaces the aggregate status for a record. Updates
// for records no longer in the context are dropped.
func (s *Store) SetDocumentStatus(noticeID string, status document.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.NoticeID == noticeID {
			s.statuses[noticeID] = status
			return true
		}
	}
	return false
}

// DocumentStatus reads the aggregate status for one record.
func (s *Store) DocumentStatus(noticeID string) (document.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[noticeID]
	return st, ok
}

// --- Panel ---

func (s *Store) SetPanelOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = open
}

func (s *Store) IsPanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

func copyRecords(in []ContractRecord) []ContractRecord {
	out := make([]ContractRecord, len(in))
	copy(out, in)
	for i := range out {
		if len(in[i].ResourceLinks) > 0 {
			out[i].ResourceLinks = append([]string(nil), in[i].ResourceLinks...)
		}
	}
	return out
}
