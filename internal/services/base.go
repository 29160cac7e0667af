package services

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"panveliq/internal/events"

	"gorm.io/gorm"
)

// BaseService interface defines common CRUD operations
type BaseService[T any] interface {
	Create(ctx context.Context, entity *T) error
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, page, limit int, filters map[string]interface{}) ([]T, int64, error)
	Update(ctx context.Context, id string, entity *T) error
	Delete(ctx context.Context, id string) error
}

// BaseServiceImpl implements BaseService
type BaseServiceImpl[T any] struct {
	db         *gorm.DB
	modelType  T
	filterable map[string]bool
}

func GormTableName(db *gorm.DB, v any) string {
	structName := reflect.TypeOf(v).Name()
	return db.NamingStrategy.TableName(structName)
}

// NewBaseService creates a new base service. Only the named columns may be
// filtered on through List; everything else in the query string is ignored.
func NewBaseService[T any](db *gorm.DB, modelType T, filterable ...string) BaseService[T] {
	allowed := make(map[string]bool, len(filterable))
	for _, column := range filterable {
		allowed[column] = true
	}
	return &BaseServiceImpl[T]{
		db:         db,
		modelType:  modelType,
		filterable: allowed,
	}
}

func (s *BaseServiceImpl[T]) Create(ctx context.Context, entity *T) error {
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.created", GormTableName(s.db, s.modelType)), entity)

	return nil
}

func (s *BaseServiceImpl[T]) Get(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := s.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (s *BaseServiceImpl[T]) List(ctx context.Context, page, limit int, filters map[string]interface{}) ([]T, int64, error) {
	var entities []T
	var total int64

	query := s.db.WithContext(ctx).Model(s.modelType).Where("is_deleted = ?", false)

	// Filter keys come straight from the query string; only whitelisted
	// column names reach the SQL.
	for key, value := range FilterColumns(filters, s.filterable) {
		query = query.Where(key+" = ?", value)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	if err := query.Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

// FilterColumns drops every filter whose key is not a whitelisted column.
func FilterColumns(filters map[string]interface{}, allowed map[string]bool) map[string]interface{} {
	out := make(map[string]interface{}, len(filters))
	for key, value := range filters {
		if allowed[key] {
			out[key] = value
		}
	}
	return out
}

func (s *BaseServiceImpl[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := s.db.WithContext(ctx).Model(entity).Where("id = ?", id).Updates(entity).Error; err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.updated", GormTableName(s.db, s.modelType)), entity)

	return nil
}

func (s *BaseServiceImpl[T]) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Model(s.modelType).Where("id = ?", id).
		Update("deleted_at", time.Now()).Update("is_deleted", true).Error; err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.deleted", GormTableName(s.db, s.modelType)), id)

	return nil
}
