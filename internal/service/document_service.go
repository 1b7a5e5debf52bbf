package service

import (
	"context"

	"contract-assistant-be/internal/pkg/logger"
	"contract-assistant-be/internal/pkg/serverutils"
	"contract-assistant-be/internal/repository/contract"
	"contract-assistant-be/pkg/document"
	"contract-assistant-be/pkg/samgov"
	"contract-assistant-be/pkg/summarizer"
)

// IDocumentService fronts the document proxy and the summarization
// backend.
type IDocumentService interface {
	ProxyDownload(ctx context.Context, noticeId, url string) (*samgov.Document, error)
	Summarize(ctx context.Context, contentBase64, contentType string) (string, error)
}

type documentService struct {
	contractRepo contract.ContractRepository
	fetcher      *samgov.Client
	summarizer   summarizer.Summarizer
	logger       logger.ILogger
}

func NewDocumentService(
	contractRepo contract.ContractRepository,
	fetcher *samgov.Client,
	summ summarizer.Summarizer,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		contractRepo: contractRepo,
		fetcher:      fetcher,
		summarizer:   summ,
		logger:       log,
	}
}

// ProxyDownload verifies the notice exists, then streams the remote
// document preserving its headers. The caller owns the returned body.
func (s *documentService) ProxyDownload(ctx context.Context, noticeId, url string) (*samgov.Document, error) {
	exists, err := s.contractRepo.Exists(ctx, noticeId)
	if err != nil {
		return nil, serverutils.NewBackendError("contract lookup failed", err)
	}
	if !exists {
		return nil, serverutils.NewNotFoundError("contract not found")
	}

	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, serverutils.NewNetworkError("document fetch failed", err)
	}
	return doc, nil
}

func (s *documentService) Summarize(ctx context.Context, contentBase64, contentType string) (string, error) {
	if !document.IsPDF(contentType, "") {
		return "", serverutils.NewFormatError("only PDF documents can be summarized")
	}

	summary, err := s.summarizer.Summarize(ctx, contentBase64, contentType)
	if err != nil {
		return "", serverutils.NewBackendError("summarization failed", err)
	}
	return summary, nil
}
