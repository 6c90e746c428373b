package specification

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ByID filters by primary key. Table may be set when the query joins.
type ByID struct {
	ID    uint
	Table string
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(column(s.Table, "id")+" = ?", s.ID)
}

type ByIDs struct {
	IDs []uint
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

type ByUserID struct {
	UserID uint
	Table  string
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(column(s.Table, "user_id")+" = ?", s.UserID)
}

type ByFileID struct {
	FileID uint
	Table  string
}

func (s ByFileID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(column(s.Table, "file_id")+" = ?", s.FileID)
}

// CreatedBefore keeps rows created strictly before At.
type CreatedBefore struct {
	At    time.Time
	Table string
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(column(s.Table, "created_at")+" < ?", s.At)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy Generic Filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}

func column(table, name string) string {
	if table == "" {
		return name
	}
	return table + "." + name
}
