package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"contract-assistant-be/pkg/document"
)

// SnapshotVersion is the current persisted-state schema. Version 1
// predates message ids and per-record document status; loading a v1
// snapshot migrates it forward once.
const SnapshotVersion = 2

// Snapshot is a deep-copied, consistent view of a Store, and the shape
// persisted to the state repository.
type Snapshot struct {
	Version          int                        `json:"version"`
	ContextContracts []ContractRecord           `json:"contextContracts"`
	Messages         []Message                  `json:"messages"`
	IsPanelOpen      bool                       `json:"isPanelOpen"`
	DocumentStatus   map[string]document.Status `json:"documentStatus"`
}

// Snapshot returns a consistent deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Version:          SnapshotVersion,
		ContextContracts: copyRecords(s.records),
		Messages:         make([]Message, len(s.messages)),
		IsPanelOpen:      s.panel,
		DocumentStatus:   make(map[string]document.Status, len(s.statuses)),
	}
	copy(snap.Messages, s.messages)
	for id, st := range s.statuses {
		snap.DocumentStatus[id] = st
	}
	return snap
}

// Restore replaces the store's state with a snapshot. The snapshot must
// already be at the current version (DecodeSnapshot migrates).
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = copyRecords(snap.ContextContracts)
	s.messages = make([]Message, len(snap.Messages))
	copy(s.messages, snap.Messages)
	if len(s.messages) == 0 {
		s.messages = []Message{newMessage(RoleAssistant, s.greeting)}
	}
	s.panel = snap.IsPanelOpen
	s.statuses = make(map[string]document.Status, len(snap.DocumentStatus))
	for id, st := range snap.DocumentStatus {
		s.statuses[id] = st
	}
}

// Encode serializes a snapshot for the state repository.
func (snap Snapshot) Encode() ([]byte, error) {
	return json.Marshal(snap)
}

// DecodeSnapshot parses persisted state and migrates older versions
// forward. Migration runs exactly once, at load.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return migrate(snap)
}

func migrate(snap Snapshot) (Snapshot, error) {
	switch {
	case snap.Version == SnapshotVersion:
		return snap, nil
	case snap.Version > SnapshotVersion:
		return Snapshot{}, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, SnapshotVersion)
	}

	// v0/v1: messages carried no ids, document status was not persisted,
	// and in-flight status from a stale snapshot must not survive a
	// restart because the jobs behind it are gone.
	for i := range snap.Messages {
		if snap.Messages[i].ID == "" {
			snap.Messages[i].ID = uuid.NewString()
		}
		snap.Messages[i].IsStreaming = false
	}
	if snap.DocumentStatus == nil {
		snap.DocumentStatus = make(map[string]document.Status)
	}
	for id, st := range snap.DocumentStatus {
		if st.Status == document.StateProcessing {
			delete(snap.DocumentStatus, id)
		}
	}
	snap.Version = SnapshotVersion
	return snap, nil
}
