package dto

import "contract-assistant-be/pkg/export"

type ExportFilters struct {
	Query    string   `json:"query,omitempty"`
	Type     []string `json:"type,omitempty"`
	SetAside []string `json:"setAside,omitempty"`
	Active   *bool    `json:"active,omitempty"`
	// Notice ids take precedence over the other filters when present
	// (export-selected scope).
	NoticeIds []string `json:"noticeIds,omitempty"`
}

type ExportContractsRequest struct {
	Filters        ExportFilters          `json:"filters"`
	SelectedFields export.FieldSelection  `json:"selectedFields"`
	Format         export.Format          `json:"format" validate:"required,oneof=csv excel json"`
	Scope          string                 `json:"scope" validate:"omitempty,oneof=all current selected"`
	Page           int                    `json:"page" validate:"omitempty,min=1"`
	PageSize       int                    `json:"pageSize" validate:"omitempty,min=1,max=500"`
}
