package postRepository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	posts "inkpress/internal/api/post"
	"inkpress/internal/entity"
	contextPkg "inkpress/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type PostDB struct {
	ID            sql.NullString `db:"id"`
	AuthorID      sql.NullString `db:"author_id"`
	Title         sql.NullString `db:"title"`
	Slug          sql.NullString `db:"slug"`
	Content       sql.NullString `db:"content"`
	Excerpt       sql.NullString `db:"excerpt"`
	FeaturedImage sql.NullString `db:"featured_image"`
	CategoryID    sql.NullString `db:"category_id"`
	Status        sql.NullString `db:"status"`
	PublishedAt   sql.NullTime   `db:"published_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`

	AuthorName      sql.NullString `db:"author_name"`
	AuthorEmail     sql.NullString `db:"author_email"`
	AuthorBio       sql.NullString `db:"author_bio"`
	AuthorAvatarURL sql.NullString `db:"author_avatar_url"`

	CategoryName        sql.NullString `db:"category_name"`
	CategorySlug        sql.NullString `db:"category_slug"`
	CategoryDescription sql.NullString `db:"category_description"`
}

func (r *postsRepository) CreatePost(ctx context.Context, post entity.Post) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":             post.ID,
		"author_id":      post.AuthorID,
		"title":          post.Title,
		"slug":           post.Slug,
		"content":        post.Content,
		"excerpt":        post.Excerpt,
		"featured_image": post.FeaturedImage,
		"category_id":    nullableID(post.CategoryID),
		"status":         post.Status,
		"published_at":   post.PublishedAt,
		"created_at":     post.CreatedAt,
		"updated_at":     post.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreatePost, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreatePost named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating post")
		return err
	}

	return nil
}

func (r *postsRepository) GetPostByID(ctx context.Context, id string) (entity.Post, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var post PostDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetPostByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPostByID named query preparation err")
		return entity.Post{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&post); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("GetPostByID no rows found")
			return entity.Post{}, posts.ErrPostNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPostByID execution err")
		return entity.Post{}, err
	}

	return r.makePost(post), nil
}

func (r *postsRepository) GetPostBySlug(ctx context.Context, slug string) (entity.Post, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var post PostDB

	argsKV := map[string]interface{}{
		"slug": slug,
	}

	query, args, err := sqlx.Named(queryGetPostBySlug, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPostBySlug named query preparation err")
		return entity.Post{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&post); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"slug":       slug,
			}).Warn("GetPostBySlug no rows found")
			return entity.Post{}, posts.ErrPostNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPostBySlug execution err")
		return entity.Post{}, err
	}

	return r.makePost(post), nil
}

// ListPosts selects one page plus the total of the filtered set. Filter
// fields left at their zero value are not part of the WHERE clause.
func (r *postsRepository) ListPosts(ctx context.Context, filter entity.PostFilter) ([]entity.Post, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var postsList []PostDB
	var total int

	conds := make([]string, 0, 4)
	argsKV := map[string]interface{}{
		"limit":  filter.Limit,
		"offset": filter.Offset,
	}

	if filter.Status != "" {
		conds = append(conds, "p.status = :status")
		argsKV["status"] = filter.Status
	}
	if filter.AuthorID != "" {
		conds = append(conds, "p.author_id = :author_id")
		argsKV["author_id"] = filter.AuthorID
	}
	if filter.CategoryID != "" {
		conds = append(conds, "p.category_id = :category_id")
		argsKV["category_id"] = filter.CategoryID
	}
	if filter.Search != "" {
		conds = append(conds, "(p.title ILIKE :search OR p.content ILIKE :search OR p.excerpt ILIKE :search)")
		argsKV["search"] = "%" + escapeLike(filter.Search) + "%"
	}

	var where string
	if len(conds) > 0 {
		where = "\nWHERE " + strings.Join(conds, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named(queryCountPosts+where, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListPosts count named query preparation err")
		return nil, 0, err
	}

	countQuery = r.q.Rebind(countQuery)

	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListPosts count execution err")
		return nil, 0, err
	}

	query, args, err := sqlx.Named(querySelectPost+where+queryOrderPosts, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListPosts named query preparation err")
		return nil, 0, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &postsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListPosts execution err")
		return nil, 0, err
	}

	var result []entity.Post
	for _, postDB := range postsList {
		result = append(result, r.makePost(postDB))
	}

	return result, total, nil
}

// SlugExists distinguishes "taken" from "the lookup failed": a query error
// comes back as an error, never as false.
func (r *postsRepository) SlugExists(ctx context.Context, slug string, excludeID string) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var exists bool

	argsKV := map[string]interface{}{
		"slug":       slug,
		"exclude_id": excludeID,
	}

	query, args, err := sqlx.Named(queryPostSlugExists, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("SlugExists named query preparation err")
		return false, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&exists); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("SlugExists execution err")
		return false, err
	}

	return exists, nil
}

func (r *postsRepository) UpdatePost(ctx context.Context, post entity.Post) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":             post.ID,
		"title":          post.Title,
		"slug":           post.Slug,
		"content":        post.Content,
		"excerpt":        post.Excerpt,
		"featured_image": post.FeaturedImage,
		"category_id":    nullableID(post.CategoryID),
		"status":         post.Status,
		"published_at":   post.PublishedAt,
		"updated_at":     time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdatePost, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdatePost named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdatePost execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdatePost rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         post.ID,
		}).Warn("UpdatePost no rows affected")
		return posts.ErrPostNotFound
	}

	return nil
}

func (r *postsRepository) DeletePost(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeletePost, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeletePost named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeletePost execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeletePost rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
		}).Warn("DeletePost no rows affected")
		return posts.ErrPostNotFound
	}

	return nil
}

func (r *postsRepository) makePost(post PostDB) entity.Post {
	var publishedAt *time.Time
	if post.PublishedAt.Valid {
		t := post.PublishedAt.Time
		publishedAt = &t
	}

	result := entity.Post{
		ID:            post.ID.String,
		AuthorID:      post.AuthorID.String,
		Title:         post.Title.String,
		Slug:          post.Slug.String,
		Content:       post.Content.String,
		Excerpt:       post.Excerpt.String,
		FeaturedImage: post.FeaturedImage.String,
		CategoryID:    post.CategoryID.String,
		Status:        post.Status.String,
		PublishedAt:   publishedAt,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}

	if post.AuthorName.Valid {
		result.Author = &entity.User{
			ID:        post.AuthorID.String,
			Name:      post.AuthorName.String,
			Email:     post.AuthorEmail.String,
			Bio:       post.AuthorBio.String,
			AvatarURL: post.AuthorAvatarURL.String,
		}
	}

	if post.CategoryID.Valid && post.CategoryName.Valid {
		result.Category = &entity.Category{
			ID:          post.CategoryID.String,
			Name:        post.CategoryName.String,
			Slug:        post.CategorySlug.String,
			Description: post.CategoryDescription.String,
		}
	}

	return result
}

// nullableID maps an empty id to NULL so optional foreign keys stay
// honest at the schema level.
func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}

// escapeLike neutralizes LIKE wildcards so user input always means a
// literal substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
