package mapper

import (
	"fmt"
	"time"

	"contract-assistant-be/internal/entity"
	"contract-assistant-be/pkg/assistant"
	"contract-assistant-be/pkg/export"
)

type ContractMapper struct{}

func NewContractMapper() *ContractMapper {
	return &ContractMapper{}
}

// ToRecord shapes a contract row into the assistant-context record.
func (m *ContractMapper) ToRecord(c *entity.Contract) assistant.ContractRecord {
	rec := assistant.ContractRecord{
		NoticeID:           c.NoticeId,
		Title:              c.Title,
		SolicitationNumber: c.SolicitationNumber,
		Department:         joinDepartment(c.Department, c.SubTier, c.Office),
		Type:               c.Type,
		PostedDate:         formatDate(c.PostedDate),
		ResponseDeadline:   formatDate(c.ResponseDeadline),
		SetAside: assistant.SetAside{
			Type:        c.SetAsideType,
			Description: c.SetAsideDesc,
		},
		NAICSCode:          c.NaicsCode,
		Active:             c.Active,
		PlaceOfPerformance: joinLocation(c.PerfCity, c.PerfState),
		Description:        c.Description,
		ResourceLinks:      c.Links(),
	}
	if c.AwardAmount != nil {
		rec.AwardAmount = formatAmount(*c.AwardAmount)
	}
	return rec
}

// ToExportRow shapes a contract row into the export projection input.
func (m *ContractMapper) ToExportRow(c *entity.Contract) export.Row {
	row := export.Row{
		NoticeID: c.NoticeId,
		Basic: &export.Basic{
			Title:              c.Title,
			SolicitationNumber: c.SolicitationNumber,
			Type:               c.Type,
			Active:             c.Active,
			Department:         c.Department,
			SubTier:            c.SubTier,
			Office:             c.Office,
		},
		Dates: &export.Dates{
			PostedDate:       c.PostedDate,
			ResponseDeadline: c.ResponseDeadline,
			ArchiveDate:      c.ArchiveDate,
		},
	}

	if c.SetAsideType != "" || c.SetAsideDesc != "" {
		row.SetAside = &export.SetAside{Type: c.SetAsideType, Description: c.SetAsideDesc}
	}
	if c.AwardDate != nil || c.AwardAmount != nil || c.AwardeeName != "" {
		row.Award = &export.Award{
			Date:        c.AwardDate,
			Amount:      c.AwardAmount,
			AwardeeName: c.AwardeeName,
			AwardeeUEI:  c.AwardeeUei,
		}
	}
	if c.ContactName != "" || c.ContactEmail != "" {
		row.Contacts = []export.Contact{{
			Name:  c.ContactName,
			Email: c.ContactEmail,
			Phone: c.ContactPhone,
		}}
	}

	var addresses export.Addresses
	if c.PerfCity != "" || c.PerfState != "" || c.PerfZip != "" || c.PerfAddress != "" {
		addresses.Performance = &export.Address{
			Address: c.PerfAddress,
			City:    c.PerfCity,
			State:   c.PerfState,
			Zip:     c.PerfZip,
		}
	}
	if c.OfficeCity != "" || c.OfficeState != "" || c.OfficeZip != "" {
		addresses.Office = &export.Address{
			City:  c.OfficeCity,
			State: c.OfficeState,
			Zip:   c.OfficeZip,
		}
	}
	if addresses.Performance != nil || addresses.Office != nil {
		row.Addresses = &addresses
	}

	if c.UiLink != "" || len(c.Links()) > 0 {
		row.Links = &export.Links{
			UILink:        c.UiLink,
			ResourceLinks: c.Links(),
		}
	}
	return row
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func joinDepartment(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " / "
		}
		out += p
	}
	return out
}

func joinLocation(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}

func formatAmount(amount float64) string {
	// Whole dollars are enough for the context block.
	s := ""
	n := int64(amount)
	neg := n < 0
	if neg {
		n = -n
	}
	for n >= 1000 {
		s = fmt.Sprintf(",%03d", n%1000) + s
		n /= 1000
	}
	s = fmt.Sprintf("%d", n) + s
	if neg {
		return "-$" + s
	}
	return "$" + s
}
