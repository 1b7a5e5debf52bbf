package dto

import "contract-assistant-be/pkg/document"

const (
	JobMessageKindJobSettled    = "job_settled"
	JobMessageKindRecordSettled = "record_settled"
)

// DocumentJobMessage is the payload published on the in-process bus as
// document jobs settle. One message per settled job, plus one final
// record_settled message carrying the derived aggregate.
type DocumentJobMessage struct {
	Kind     string              `json:"kind"`
	ClientId string              `json:"client_id"`
	NoticeId string              `json:"notice_id"`
	Settled  int                 `json:"settled,omitempty"`
	Result   *document.JobResult `json:"result,omitempty"`
	Status   *document.Status    `json:"status,omitempty"`
}
