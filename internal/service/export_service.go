package service

import (
	"bytes"
	"context"
	"time"

	"contract-assistant-be/internal/dto"
	"contract-assistant-be/internal/mapper"
	"contract-assistant-be/internal/pkg/logger"
	"contract-assistant-be/internal/pkg/serverutils"
	"contract-assistant-be/internal/repository/contract"
	"contract-assistant-be/pkg/export"
)

// ExportResult is a serialized export ready to be served as a download.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

type IExportService interface {
	ExportContracts(ctx context.Context, request *dto.ExportContractsRequest) (*ExportResult, error)
}

type exportService struct {
	contractRepo   contract.ContractRepository
	contractMapper *mapper.ContractMapper
	logger         logger.ILogger
	now            func() time.Time
}

func NewExportService(contractRepo contract.ContractRepository, log logger.ILogger) IExportService {
	return &exportService{
		contractRepo:   contractRepo,
		contractMapper: mapper.NewContractMapper(),
		logger:         log,
		now:            time.Now,
	}
}

func (s *exportService) ExportContracts(ctx context.Context, request *dto.ExportContractsRequest) (*ExportResult, error) {
	filters := contract.ContractFilters{
		Query:     request.Filters.Query,
		Types:     request.Filters.Type,
		SetAside:  request.Filters.SetAside,
		Active:    request.Filters.Active,
		NoticeIds: request.Filters.NoticeIds,
	}

	switch request.Scope {
	case "current":
		filters.Page = request.Page
		filters.PageSize = request.PageSize
		if filters.PageSize == 0 {
			filters.PageSize = 25
		}
	case "selected":
		if len(filters.NoticeIds) == 0 {
			return nil, serverutils.NewValidationError("selected scope requires noticeIds")
		}
	}

	rows, err := s.contractRepo.Search(ctx, filters)
	if err != nil {
		return nil, serverutils.NewBackendError("contract search failed", err)
	}

	exportRows := make([]export.Row, 0, len(rows))
	for i := range rows {
		exportRows = append(exportRows, s.contractMapper.ToExportRow(&rows[i]))
	}
	records := export.Project(exportRows, request.SelectedFields)

	var buf bytes.Buffer
	if err := export.Write(&buf, request.Format, records); err != nil {
		return nil, serverutils.NewBackendError("export serialization failed", err)
	}

	s.logger.Info("ExportService", "Contracts exported", map[string]interface{}{
		"rows":   len(records),
		"format": string(request.Format),
	})

	return &ExportResult{
		FileName:    export.FileName(request.Format, s.now()),
		ContentType: export.ContentType(request.Format),
		Data:        buf.Bytes(),
	}, nil
}
