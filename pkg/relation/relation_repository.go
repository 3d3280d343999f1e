// Package relation implements the single-membership contract shared by
// favorites, shopping carts and subscriptions: at most one record per
// (subject, target) pair, with idempotency conflicts reported to the
// caller instead of duplicated rows.
package relation

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// Repository is instantiated once per record type; the record's
	// composite unique index on (subject, target) is what makes Add
	// race-safe.
	Repository[T any] interface {
		Add(ctx context.Context, subject, target uint) (bool, error)
		Remove(ctx context.Context, subject, target uint) (bool, error)
		Exists(ctx context.Context, subject, target uint) (bool, error)
	}

	repository[T any] struct {
		db         *gorm.DB
		subjectCol string
		targetCol  string
		newRecord  func(subject, target uint) *T
	}
)

func NewRepository[T any](db *gorm.DB, subjectCol, targetCol string, newRecord func(subject, target uint) *T) Repository[T] {
	return &repository[T]{
		db:         db,
		subjectCol: subjectCol,
		targetCol:  targetCol,
		newRecord:  newRecord,
	}
}

// Add inserts the (subject, target) record unless it already exists.
// The insert and the existence check are one statement (ON CONFLICT DO
// NOTHING), so two racing calls produce exactly one row and the loser
// sees created == false.
func (r *repository[T]) Add(ctx context.Context, subject, target uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(r.newRecord(subject, target))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Remove deletes the (subject, target) record. removed == false means
// there was nothing to delete.
func (r *repository[T]) Remove(ctx context.Context, subject, target uint) (bool, error) {
	var record T
	res := r.db.WithContext(ctx).
		Where(r.pairCondition(), subject, target).
		Delete(&record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository[T]) Exists(ctx context.Context, subject, target uint) (bool, error) {
	var record T
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&record).
		Where(r.pairCondition(), subject, target).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository[T]) pairCondition() string {
	return fmt.Sprintf("%s = ? AND %s = ?", r.subjectCol, r.targetCol)
}
