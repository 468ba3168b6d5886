package database

import (
	"fmt"

	"github.com/helixml/segalloc/domain/repository"
	"gorm.io/gorm"
)

// ApplyOptions applies the conditions, ordering and pagination of options to
// a GORM session.
func ApplyOptions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	q := repository.Build(options...)
	db = applyConditions(db, q)

	for _, ord := range q.Orders() {
		dir := "ASC"
		if !ord.Ascending() {
			dir = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", ord.Field(), dir))
	}
	if q.Limit() > 0 {
		db = db.Limit(q.Limit())
	}
	if q.Offset() > 0 {
		db = db.Offset(q.Offset())
	}
	return db
}

// ApplyConditions applies only the WHERE conditions, for COUNT queries.
func ApplyConditions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	return applyConditions(db, repository.Build(options...))
}

func applyConditions(db *gorm.DB, q repository.Query) *gorm.DB {
	for _, cond := range q.Conditions() {
		if cond.In() {
			db = db.Where(fmt.Sprintf("%s IN ?", cond.Field()), cond.Value())
			continue
		}
		db = db.Where(fmt.Sprintf("%s = ?", cond.Field()), cond.Value())
	}
	return db
}
