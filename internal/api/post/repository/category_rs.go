package postRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	posts "inkpress/internal/api/post"
	"inkpress/internal/entity"
	contextPkg "inkpress/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type CategoryDB struct {
	ID          sql.NullString `db:"id"`
	Name        sql.NullString `db:"name"`
	Slug        sql.NullString `db:"slug"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *categoriesRepository) CreateCategory(ctx context.Context, category entity.Category) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":          category.ID,
		"name":        category.Name,
		"slug":        category.Slug,
		"description": category.Description,
		"created_at":  category.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateCategory, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateCategory named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"slug":       category.Slug,
			}).Warn("Category slug already exists")
			return posts.ErrCategoryNameTaken
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating category")
		return err
	}

	return nil
}

func (r *categoriesRepository) GetCategoryByID(ctx context.Context, id string) (entity.Category, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var category CategoryDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetCategoryByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCategoryByID named query preparation err")
		return entity.Category{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("GetCategoryByID no rows found")
			return entity.Category{}, posts.ErrCategoryNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCategoryByID execution err")
		return entity.Category{}, err
	}

	return r.makeCategory(category), nil
}

func (r *categoriesRepository) GetCategoryBySlug(ctx context.Context, slug string) (entity.Category, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var category CategoryDB

	argsKV := map[string]interface{}{
		"slug": slug,
	}

	query, args, err := sqlx.Named(queryGetCategoryBySlug, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCategoryBySlug named query preparation err")
		return entity.Category{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"slug":       slug,
			}).Warn("GetCategoryBySlug no rows found")
			return entity.Category{}, posts.ErrCategoryNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCategoryBySlug execution err")
		return entity.Category{}, err
	}

	return r.makeCategory(category), nil
}

func (r *categoriesRepository) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var categoriesList []CategoryDB

	query := r.q.Rebind(queryGetAllCategories)

	if err := r.q.SelectContext(ctx, &categoriesList, query); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllCategories execution err")
		return nil, err
	}

	var result []entity.Category
	for _, categoryDB := range categoriesList {
		result = append(result, r.makeCategory(categoryDB))
	}

	return result, nil
}

func (r *categoriesRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var exists bool

	argsKV := map[string]interface{}{
		"slug": slug,
	}

	query, args, err := sqlx.Named(queryCategorySlugExists, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Category SlugExists named query preparation err")
		return false, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&exists); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Category SlugExists execution err")
		return false, err
	}

	return exists, nil
}

func (r *categoriesRepository) UpdateCategory(ctx context.Context, category entity.Category) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":          category.ID,
		"name":        category.Name,
		"description": category.Description,
	}

	query, args, err := sqlx.Named(queryUpdateCategory, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateCategory named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateCategory execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         category.ID,
		}).Warn("UpdateCategory no rows affected")
		return posts.ErrCategoryNotFound
	}

	return nil
}

// DetachCategoryFromPosts clears the category from every post that points
// at it. Runs in the same transaction as the category delete.
func (r *categoriesRepository) DetachCategoryFromPosts(ctx context.Context, categoryID string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"category_id": categoryID,
	}

	query, args, err := sqlx.Named(queryDetachCategoryFromPosts, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DetachCategoryFromPosts named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DetachCategoryFromPosts execution err")
		return err
	}

	return nil
}

func (r *categoriesRepository) DeleteCategory(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteCategory, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteCategory named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteCategory execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
		}).Warn("DeleteCategory no rows affected")
		return posts.ErrCategoryNotFound
	}

	return nil
}

func (r *categoriesRepository) makeCategory(category CategoryDB) entity.Category {
	return entity.Category{
		ID:          category.ID.String,
		Name:        category.Name.String,
		Slug:        category.Slug.String,
		Description: category.Description.String,
		CreatedAt:   category.CreatedAt,
	}
}
