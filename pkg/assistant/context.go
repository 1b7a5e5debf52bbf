package assistant

import (
	"fmt"
	"strings"
)

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// FormatContext renders the context records as the plain-text block the
// model receives. summaries carries completed document summaries keyed
// by notice id; records without entries render without an attachment
// section.
func FormatContext(records []ContractRecord, summaries map[string][]DocumentSummary) string {
	blocks := make([]string, 0, len(records))
	for i, rec := range records {
		var b strings.Builder
		fmt.Fprintf(&b, "Contract %d: %s\n", i+1, rec.Title)
		fmt.Fprintf(&b, "ID: %s\n", rec.NoticeID)
		fmt.Fprintf(&b, "Type: %s\n", rec.Type)
		fmt.Fprintf(&b, "Department: %s\n", orDefault(rec.Department, "Not specified"))
		fmt.Fprintf(&b, "Posted Date: %s\n", rec.PostedDate)
		fmt.Fprintf(&b, "Response Deadline: %s\n", orDefault(rec.ResponseDeadline, "Not specified"))
		fmt.Fprintf(&b, "Set-aside: %s\n", orDefault(rec.SetAside.Description, "None"))
		fmt.Fprintf(&b, "NAICS Code: %s\n", rec.NAICSCode)
		fmt.Fprintf(&b, "Status: %s\n", rec.Status())
		fmt.Fprintf(&b, "Value: %s\n", orDefault(rec.AwardAmount, "Not specified"))
		fmt.Fprintf(&b, "Location: %s", rec.PlaceOfPerformance)
		if rec.Description != "" {
			fmt.Fprintf(&b, "\nDescription: %s", rec.Description)
		}
		if docs := summaries[rec.NoticeID]; len(docs) > 0 {
			b.WriteString("\n\nAttached Documents:")
			for _, doc := range docs {
				fmt.Fprintf(&b, "\n- %s\n  Summary: %s", doc.URL, doc.Summary)
			}
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// SystemMessage combines the assistant prompt with the formatted
// context block into the single system message sent ahead of history.
func SystemMessage(prompt string, records []ContractRecord, summaries map[string][]DocumentSummary) string {
	if len(records) == 0 {
		return prompt
	}
	return fmt.Sprintf("%s\n\nYou have access to the following contract details:\n\n%s",
		prompt, FormatContext(records, summaries))
}
