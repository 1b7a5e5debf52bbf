package dto

type SummarizeDocumentRequest struct {
	Content     string `json:"content" validate:"required,base64"`
	ContentType string `json:"contentType" validate:"required"`
}

type SummarizeDocumentResponse struct {
	Summary string `json:"summary"`
}
