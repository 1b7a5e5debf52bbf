package dto

import (
	"contract-assistant-be/pkg/assistant"
	"contract-assistant-be/pkg/document"
)

type SendChatRequest struct {
	Message string `json:"message" validate:"required"`
	Stream  bool   `json:"stream"`
}

type SendChatResponse struct {
	Sent  assistant.Message `json:"sent"`
	Reply assistant.Message `json:"reply"`
}

type AddContextRequest struct {
	NoticeId string `json:"notice_id" validate:"required"`
}

type ContextMutationResponse struct {
	Added     bool                       `json:"added,omitempty"`
	Removed   bool                       `json:"removed,omitempty"`
	Contracts []assistant.ContractRecord `json:"contracts"`
}

type PanelRequest struct {
	IsOpen bool `json:"is_open"`
}

type AssistantStateResponse struct {
	ContextContracts []assistant.ContractRecord `json:"contextContracts"`
	Messages         []assistant.Message        `json:"messages"`
	IsPanelOpen      bool                       `json:"isPanelOpen"`
	DocumentStatus   map[string]document.Status `json:"documentStatus"`
	QuickQuestions   []string                   `json:"quickQuestions"`
}
