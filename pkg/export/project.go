package export

import (
	"fmt"
	"strings"
	"time"
)

// FieldSelection is the field-group mask applied to every exported row.
type FieldSelection struct {
	Basic     bool `json:"basic"`
	Contacts  bool `json:"contacts"`
	Addresses bool `json:"addresses"`
	Awards    bool `json:"awards"`
	SetAside  bool `json:"setAside"`
	Dates     bool `json:"dates"`
	Links     bool `json:"links"`
}

// Row is one joined contract row as read from the repository. Group
// pointers are nil when the row has no data for that group; those
// groups are omitted from the flat record even when selected.
type Row struct {
	NoticeID  string
	Basic     *Basic
	Dates     *Dates
	SetAside  *SetAside
	Award     *Award
	Contacts  []Contact
	Addresses *Addresses
	Links     *Links
}

type Basic struct {
	Title              string
	SolicitationNumber string
	Type               string
	Active             bool
	Department         string
	SubTier            string
	Office             string
}

type Dates struct {
	PostedDate       *time.Time
	ResponseDeadline *time.Time
	ArchiveDate      *time.Time
}

type SetAside struct {
	Type        string
	Description string
}

type Award struct {
	Date        *time.Time
	Amount      *float64
	AwardeeName string
	AwardeeUEI  string
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

type Address struct {
	Address string
	City    string
	State   string
	Zip     string
}

type Addresses struct {
	Performance *Address
	Office      *Address
}

type Links struct {
	UILink        string
	ResourceLinks []string
}

// Field is one named column value in a flat record.
type Field struct {
	Key   string
	Value string
}

// FlatRecord is an ordered flat projection of one row. Order matters:
// CSV and Excel columns follow first appearance.
type FlatRecord []Field

// Get returns the value for a key, and whether the record carries it.
func (r FlatRecord) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Project flattens rows into records carrying only the selected field
// groups. Each input row yields exactly one record.
func Project(rows []Row, sel FieldSelection) []FlatRecord {
	records := make([]FlatRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, projectRow(row, sel))
	}
	return records
}

func projectRow(row Row, sel FieldSelection) FlatRecord {
	var rec FlatRecord
	add := func(key, value string) {
		rec = append(rec, Field{Key: key, Value: value})
	}

	if sel.Basic && row.Basic != nil {
		b := row.Basic
		status := "Inactive"
		if b.Active {
			status = "Active"
		}
		add("Notice ID", row.NoticeID)
		add("Title", b.Title)
		add("Solicitation Number", b.SolicitationNumber)
		add("Type", b.Type)
		add("Status", status)
		add("Department", b.Department)
		add("Sub-Tier", b.SubTier)
		add("Office", b.Office)
	}

	if sel.Dates && row.Dates != nil {
		d := row.Dates
		add("Posted Date", formatDate(d.PostedDate))
		add("Response Deadline", formatDate(d.ResponseDeadline))
		add("Archive Date", formatDate(d.ArchiveDate))
	}

	if sel.SetAside && row.SetAside != nil {
		add("Set-Aside Type", row.SetAside.Type)
		add("Set-Aside Description", row.SetAside.Description)
	}

	if sel.Awards && row.Award != nil {
		a := row.Award
		add("Award Date", formatDate(a.Date))
		add("Award Amount", formatUSD(a.Amount))
		add("Awardee Name", a.AwardeeName)
		add("Awardee UEI", a.AwardeeUEI)
	}

	// Only the primary contact fits the flat format.
	if sel.Contacts && len(row.Contacts) > 0 {
		c := row.Contacts[0]
		add("Primary Contact Name", c.Name)
		add("Primary Contact Email", c.Email)
		add("Primary Contact Phone", c.Phone)
	}

	if sel.Addresses && row.Addresses != nil {
		if p := row.Addresses.Performance; p != nil {
			add("Performance Location", joinLocation(p.City, p.State))
			add("Performance Address", p.Address)
			add("Performance ZIP", p.Zip)
		}
		if o := row.Addresses.Office; o != nil {
			add("Office Location", joinLocation(o.City, o.State))
			add("Office ZIP", o.Zip)
		}
	}

	if sel.Links && row.Links != nil {
		add("SAM.gov URL", row.Links.UILink)
		add("Resource Links", strings.Join(row.Links.ResourceLinks, "\n"))
	}

	return rec
}

// Columns returns every key present across the records, ordered by
// first appearance. CSV and Excel headers use this order.
func Columns(records []FlatRecord) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, rec := range records {
		for _, f := range rec {
			if !seen[f.Key] {
				seen[f.Key] = true
				cols = append(cols, f.Key)
			}
		}
	}
	return cols
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("1/2/2006")
}

func joinLocation(city, state string) string {
	parts := make([]string, 0, 2)
	if city != "" {
		parts = append(parts, city)
	}
	if state != "" {
		parts = append(parts, state)
	}
	return strings.Join(parts, ", ")
}

// formatUSD renders an amount like $1,234,567.89.
func formatUSD(amount *float64) string {
	if amount == nil {
		return ""
	}
	s := fmt.Sprintf("%.2f", *amount)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + "$" + b.String() + "." + frac
}
