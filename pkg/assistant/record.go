package assistant

import (
	"errors"
	"fmt"
)

const (
	// MaxContextRecords bounds how many contracts can sit in the assistant
	// context at once. Larger contexts blow the model's token budget.
	MaxContextRecords = 5

	// MaxHistory bounds the conversation log. The greeting at index 0 is
	// pinned and survives every trim.
	MaxHistory = 50
)

// ErrContextFull is returned when the registry already holds
// MaxContextRecords records.
var ErrContextFull = errors.New("assistant: context limit reached")

// SetAside carries a contract's set-aside classification.
type SetAside struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// DocumentSummary pairs an attachment URL with its generated summary.
type DocumentSummary struct {
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// ContractRecord is a contract opportunity attached to the assistant
// context. It mirrors the read model served by the contracts API.
type ContractRecord struct {
	NoticeID           string   `json:"noticeId"`
	Title              string   `json:"title"`
	SolicitationNumber string   `json:"solicitationNumber,omitempty"`
	Department         string   `json:"department,omitempty"`
	Type               string   `json:"type"`
	PostedDate         string   `json:"postedDate"`
	ResponseDeadline   string   `json:"responseDeadline,omitempty"`
	SetAside           SetAside `json:"setAside"`
	NAICSCode          string   `json:"naicsCode,omitempty"`
	Active             bool     `json:"active"`
	AwardAmount        string   `json:"awardAmount,omitempty"`
	PlaceOfPerformance string   `json:"placeOfPerformance,omitempty"`
	Description        string   `json:"description,omitempty"`
	ResourceLinks      []string `json:"resourceLinks,omitempty"`
}

// Validate rejects records missing the fields every downstream consumer
// relies on.
func (r ContractRecord) Validate() error {
	if r.NoticeID == "" {
		return fmt.Errorf("assistant: contract record missing notice id")
	}
	if r.Title == "" {
		return fmt.Errorf("assistant: contract record %s missing title", r.NoticeID)
	}
	return nil
}

// Status renders the active flag the way the upstream data source does.
func (r ContractRecord) Status() string {
	if r.Active {
		return "active"
	}
	return "inactive"
}
