package implementation

import (
	"context"
	"errors"

	"contract-assistant-be/internal/entity"
	"contract-assistant-be/internal/repository/contract"
	"contract-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ContractRepositoryImpl struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) contract.ContractRepository {
	return &ContractRepositoryImpl{db: db}
}

func (r *ContractRepositoryImpl) FindByNoticeId(ctx context.Context, noticeId string) (*entity.Contract, error) {
	var c entity.Contract
	err := r.db.WithContext(ctx).First(&c, "notice_id = ?", noticeId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ContractRepositoryImpl) Exists(ctx context.Context, noticeId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Contract{}).
		Where("notice_id = ?", noticeId).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// specsFor translates search filters into query specifications. An explicit
// notice ID list overrides every other filter.
func specsFor(filters contract.ContractFilters) []specification.Specification {
	var specs []specification.Specification

	if len(filters.NoticeIds) > 0 {
		specs = append(specs, specification.ByNoticeIds{NoticeIds: filters.NoticeIds})
	} else {
		if filters.Query != "" {
			specs = append(specs, specification.TextSearch{Query: filters.Query})
		}
		if len(filters.Types) > 0 {
			specs = append(specs, specification.ByTypes{Types: filters.Types})
		}
		if len(filters.SetAside) > 0 {
			specs = append(specs, specification.BySetAside{SetAside: filters.SetAside})
		}
		if filters.Active != nil {
			specs = append(specs, specification.ByActive{Active: *filters.Active})
		}
	}

	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		specs = append(specs, specification.Pagination{
			Limit:  filters.PageSize,
			Offset: (page - 1) * filters.PageSize,
		})
	}

	specs = append(specs, specification.OrderBy{Field: "posted_date", Desc: true})
	return specs
}

func (r *ContractRepositoryImpl) Search(ctx context.Context, filters contract.ContractFilters) ([]entity.Contract, error) {
	db := r.db.WithContext(ctx).Model(&entity.Contract{})
	for _, spec := range specsFor(filters) {
		db = spec.Apply(db)
	}

	var rows []entity.Contract
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
