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
	"github.com/sirupsen/logrus"
)

type CommentDB struct {
	ID        sql.NullString `db:"id"`
	PostID    sql.NullString `db:"post_id"`
	UserID    sql.NullString `db:"user_id"`
	Content   sql.NullString `db:"content"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`

	AuthorName      sql.NullString `db:"author_name"`
	AuthorAvatarURL sql.NullString `db:"author_avatar_url"`
}

func (r *commentsRepository) CreateComment(ctx context.Context, comment entity.Comment) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":         comment.ID,
		"post_id":    comment.PostID,
		"user_id":    comment.UserID,
		"content":    comment.Content,
		"created_at": comment.CreatedAt,
		"updated_at": comment.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateComment, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateComment named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating comment")
		return err
	}

	return nil
}

func (r *commentsRepository) GetCommentByID(ctx context.Context, id string) (entity.Comment, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var comment CommentDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetCommentByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCommentByID named query preparation err")
		return entity.Comment{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&comment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("GetCommentByID no rows found")
			return entity.Comment{}, posts.ErrCommentNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCommentByID execution err")
		return entity.Comment{}, err
	}

	return r.makeComment(comment), nil
}

func (r *commentsRepository) ListCommentsByPostID(ctx context.Context, postID string) ([]entity.Comment, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var commentsList []CommentDB

	argsKV := map[string]interface{}{
		"post_id": postID,
	}

	query, args, err := sqlx.Named(queryListCommentsByPostID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListCommentsByPostID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &commentsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListCommentsByPostID execution err")
		return nil, err
	}

	var result []entity.Comment
	for _, commentDB := range commentsList {
		result = append(result, r.makeComment(commentDB))
	}

	return result, nil
}

func (r *commentsRepository) DeleteComment(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteComment, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteComment named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteComment execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteComment rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
		}).Warn("DeleteComment no rows affected")
		return posts.ErrCommentNotFound
	}

	return nil
}

// DeleteCommentsByPostID clears a post's comments ahead of deleting the
// post itself. Zero rows is not an error here.
func (r *commentsRepository) DeleteCommentsByPostID(ctx context.Context, postID string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"post_id": postID,
	}

	query, args, err := sqlx.Named(queryDeleteCommentsByPostID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteCommentsByPostID named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteCommentsByPostID execution err")
		return err
	}

	return nil
}

func (r *commentsRepository) makeComment(comment CommentDB) entity.Comment {
	result := entity.Comment{
		ID:        comment.ID.String,
		PostID:    comment.PostID.String,
		UserID:    comment.UserID.String,
		Content:   comment.Content.String,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}

	if comment.AuthorName.Valid {
		result.Author = &entity.User{
			ID:        comment.UserID.String,
			Name:      comment.AuthorName.String,
			AvatarURL: comment.AuthorAvatarURL.String,
		}
	}

	return result
}
