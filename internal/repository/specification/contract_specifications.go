package specification

import "gorm.io/gorm"

// ByNoticeIds filters by an explicit list of notice IDs.
type ByNoticeIds struct {
	NoticeIds []string
}

func (s ByNoticeIds) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notice_id IN ?", s.NoticeIds)
}

// TextSearch matches the query against title, solicitation number and
// description, case-insensitively.
type TextSearch struct {
	Query string
}

func (s TextSearch) Apply(db *gorm.DB) *gorm.DB {
	like := "%" + s.Query + "%"
	return db.Where("title ILIKE ? OR solicitation_number ILIKE ? OR description ILIKE ?", like, like, like)
}

// ByTypes filters by opportunity type.
type ByTypes struct {
	Types []string
}

func (s ByTypes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type IN ?", s.Types)
}

// BySetAside filters by set-aside type code.
type BySetAside struct {
	SetAside []string
}

func (s BySetAside) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("set_aside_type IN ?", s.SetAside)
}

// ByActive filters on the active flag.
type ByActive struct {
	Active bool
}

func (s ByActive) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", s.Active)
}
