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

type TagDB struct {
	ID        sql.NullString `db:"id"`
	Name      sql.NullString `db:"name"`
	Slug      sql.NullString `db:"slug"`
	CreatedAt time.Time      `db:"created_at"`
}

type postTagDB struct {
	PostID sql.NullString `db:"post_id"`
	TagDB
}

func (r *tagsRepository) CreateTag(ctx context.Context, tag entity.Tag) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":         tag.ID,
		"name":       tag.Name,
		"slug":       tag.Slug,
		"created_at": tag.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateTag, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateTag named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"slug":       tag.Slug,
			}).Warn("Tag slug already exists")
			return posts.ErrTagNameTaken
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating tag")
		return err
	}

	return nil
}

func (r *tagsRepository) GetTagBySlug(ctx context.Context, slug string) (entity.Tag, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var tag TagDB

	argsKV := map[string]interface{}{
		"slug": slug,
	}

	query, args, err := sqlx.Named(queryGetTagBySlug, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTagBySlug named query preparation err")
		return entity.Tag{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&tag); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"slug":       slug,
			}).Warn("GetTagBySlug no rows found")
			return entity.Tag{}, posts.ErrTagNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTagBySlug execution err")
		return entity.Tag{}, err
	}

	return r.makeTag(tag), nil
}

func (r *tagsRepository) GetAllTags(ctx context.Context) ([]entity.Tag, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var tagsList []TagDB

	query := r.q.Rebind(queryGetAllTags)

	if err := r.q.SelectContext(ctx, &tagsList, query); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllTags execution err")
		return nil, err
	}

	var result []entity.Tag
	for _, tagDB := range tagsList {
		result = append(result, r.makeTag(tagDB))
	}

	return result, nil
}

func (r *tagsRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var exists bool

	argsKV := map[string]interface{}{
		"slug": slug,
	}

	query, args, err := sqlx.Named(queryTagSlugExists, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Tag SlugExists named query preparation err")
		return false, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&exists); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Tag SlugExists execution err")
		return false, err
	}

	return exists, nil
}

func (r *tagsRepository) ListTagsByPostID(ctx context.Context, postID string) ([]entity.Tag, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var tagsList []TagDB

	argsKV := map[string]interface{}{
		"post_id": postID,
	}

	query, args, err := sqlx.Named(queryListTagsByPostID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListTagsByPostID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &tagsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListTagsByPostID execution err")
		return nil, err
	}

	var result []entity.Tag
	for _, tagDB := range tagsList {
		result = append(result, r.makeTag(tagDB))
	}

	return result, nil
}

// ListTagsForPosts loads the tags of a whole result page in one query,
// keyed by post id.
func (r *tagsRepository) ListTagsForPosts(ctx context.Context, postIDs []string) (map[string][]entity.Tag, error) {
	requestID := contextPkg.GetRequestID(ctx)

	result := make(map[string][]entity.Tag, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(queryListTagsForPosts, postIDs)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListTagsForPosts in query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	var rows []postTagDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListTagsForPosts execution err")
		return nil, err
	}

	for _, row := range rows {
		result[row.PostID.String] = append(result[row.PostID.String], r.makeTag(row.TagDB))
	}

	return result, nil
}

// ReplacePostTags rewrites the full tag set of a post. Callers run it
// inside a transaction so the delete and the inserts land together.
func (r *tagsRepository) ReplacePostTags(ctx context.Context, postID string, tagIDs []string) error {
	requestID := contextPkg.GetRequestID(ctx)

	deleteQuery, deleteArgs, err := sqlx.Named(queryDeletePostTagsByPostID, map[string]interface{}{
		"post_id": postID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReplacePostTags delete named query preparation err")
		return err
	}

	deleteQuery = r.q.Rebind(deleteQuery)

	if _, err := r.q.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReplacePostTags delete execution err")
		return err
	}

	for _, tagID := range tagIDs {
		argsKV := map[string]interface{}{
			"post_id": postID,
			"tag_id":  tagID,
		}

		query, args, err := sqlx.Named(queryInsertPostTag, argsKV)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("ReplacePostTags insert named query preparation err")
			return err
		}

		query = r.q.Rebind(query)

		if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
				"tag_id":     tagID,
			}).Error("ReplacePostTags insert execution err")
			return err
		}
	}

	return nil
}

func (r *tagsRepository) DeletePostTagsByTagID(ctx context.Context, tagID string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"tag_id": tagID,
	}

	query, args, err := sqlx.Named(queryDeletePostTagsByTagID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeletePostTagsByTagID named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeletePostTagsByTagID execution err")
		return err
	}

	return nil
}

func (r *tagsRepository) DeleteTag(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteTag, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteTag named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteTag execution err")
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
		}).Warn("DeleteTag no rows affected")
		return posts.ErrTagNotFound
	}

	return nil
}

func (r *tagsRepository) makeTag(tag TagDB) entity.Tag {
	return entity.Tag{
		ID:        tag.ID.String,
		Name:      tag.Name.String,
		Slug:      tag.Slug.String,
		CreatedAt: tag.CreatedAt,
	}
}
