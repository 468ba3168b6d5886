// Package persistence provides database storage implementations.
package persistence

import "time"

// DocumentModel is a stored annotation file.
type DocumentModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(255);index;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	Hash      string    `gorm:"column:hash;type:varchar(64);uniqueIndex;not null"`
	TierNames string    `gorm:"column:tier_names;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name.
func (DocumentModel) TableName() string {
	return "documents"
}
