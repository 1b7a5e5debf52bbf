package contract

import (
	"context"

	"contract-assistant-be/internal/entity"
)

// ContractFilters narrows a contract search. NoticeIds wins over the
// other filters when set (export-selected scope).
type ContractFilters struct {
	Query     string
	Types     []string
	SetAside  []string
	Active    *bool
	NoticeIds []string
	Page      int
	PageSize  int
}

type ContractRepository interface {
	FindByNoticeId(ctx context.Context, noticeId string) (*entity.Contract, error)
	Exists(ctx context.Context, noticeId string) (bool, error)
	Search(ctx context.Context, filters ContractFilters) ([]entity.Contract, error)
}
