package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Contract is the read model of a SAM.gov opportunity row. This service
// never writes contracts; ingestion owns the table.
type Contract struct {
	NoticeId           string `gorm:"primaryKey"`
	Title              string
	SolicitationNumber string
	Department         string
	SubTier            string
	Office             string
	Type               string
	PostedDate         *time.Time
	ResponseDeadline   *time.Time
	ArchiveDate        *time.Time
	SetAsideType       string
	SetAsideDesc       string
	NaicsCode          string
	Active             bool
	Description        string
	AwardDate          *time.Time
	AwardAmount        *float64
	AwardeeName        string
	AwardeeUei         string
	ContactName        string
	ContactEmail       string
	ContactPhone       string
	PerfCity           string
	PerfState          string
	PerfZip            string
	PerfAddress        string
	OfficeCity         string
	OfficeState        string
	OfficeZip          string
	UiLink             string
	ResourceLinks      datatypes.JSON // JSON array of attachment URLs
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// Links decodes the resource link column. A malformed column reads as
// no attachments.
func (c *Contract) Links() []string {
	if len(c.ResourceLinks) == 0 {
		return nil
	}
	var links []string
	if err := json.Unmarshal(c.ResourceLinks, &links); err != nil {
		return nil
	}
	return links
}
