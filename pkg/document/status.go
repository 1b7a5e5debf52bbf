package document

import "fmt"

// AggregateState is the derived per-record status across all of a record's
// document jobs.
type AggregateState string

const (
	StateProcessing  AggregateState = "processing"
	StateCompleted   AggregateState = "completed"
	StateError       AggregateState = "error"
	StateUnsupported AggregateState = "unsupported"
)

// Status is the per-record aggregate exposed to the client.
// ProcessedCount never exceeds DocumentCount, and Status is only terminal
// once every job has settled.
type Status struct {
	Status         AggregateState `json:"status"`
	DocumentCount  int            `json:"documentCount"`
	ProcessedCount int            `json:"processedCount"`
	Message        string         `json:"message,omitempty"`
}

// NewProcessingStatus is the initial aggregate for a record with documents.
func NewProcessingStatus(documentCount int) Status {
	return Status{
		Status:        StateProcessing,
		DocumentCount: documentCount,
	}
}

// DeriveAggregate computes the terminal aggregate once all jobs for a record
// have settled. At least one success wins: the record is usable even when
// some attachments could not be processed.
func DeriveAggregate(results []JobResult) Status {
	var succeeded, unsupported, failed int
	for _, r := range results {
		switch r.Status {
		case JobSuccess:
			succeeded++
		case JobUnsupported:
			unsupported++
		default:
			failed++
		}
	}

	status := Status{
		DocumentCount:  len(results),
		ProcessedCount: len(results),
	}

	switch {
	case succeeded > 0:
		status.Status = StateCompleted
		if unsupported+failed > 0 {
			status.Message = fmt.Sprintf("%d of %d documents summarized; %d skipped",
				succeeded, len(results), unsupported+failed)
		}
	case unsupported > failed:
		status.Status = StateUnsupported
		status.Message = "no supported document types found"
	default:
		status.Status = StateError
		status.Message = firstFailureMessage(results)
	}

	return status
}

func firstFailureMessage(results []JobResult) string {
	for _, r := range results {
		if r.Status == JobError && r.Message != "" {
			return r.Message
		}
	}
	return "document processing failed"
}
