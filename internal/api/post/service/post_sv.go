package postService

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	posts "inkpress/internal/api/post"
	postRepository "inkpress/internal/api/post/repository"
	"inkpress/internal/entity"
	contextPkg "inkpress/pkg/context"
	"inkpress/pkg/redis"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (s *postsService) CreatePost(ctx context.Context, req posts.CreatePostRequest, author entity.UserLoginData) (res posts.PostResponse, err error) {
	requestID := contextPkg.GetRequestID(ctx)
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"author_id":  author.ID,
	}).Debug("Creating post")

	client, err := s.postsRepo.NewClient(true)
	if err != nil {
		return posts.PostResponse{}, err
	}
	defer func() {
		if err != nil {
			if rbErr := client.Rollback(); rbErr != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      rbErr.Error(),
				}).Error("CreatePost rollback failed")
			}
		}
	}()

	if req.CategoryID != "" {
		if _, err = client.Categories.GetCategoryByID(ctx, req.CategoryID); err != nil {
			return posts.PostResponse{}, err
		}
	}

	postSlug, err := s.generatePostSlug(ctx, client, req.Title, "")
	if err != nil {
		return posts.PostResponse{}, err
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return posts.PostResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = entity.PostStatusDraft
	}

	now := time.Now()
	post := entity.Post{
		ID:            id,
		AuthorID:      author.ID,
		Title:         req.Title,
		Slug:          postSlug,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		CategoryID:    req.CategoryID,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == entity.PostStatusPublished {
		post.PublishedAt = &now
	}

	if err = client.Posts.CreatePost(ctx, post); err != nil {
		return posts.PostResponse{}, err
	}

	if len(req.Tags) > 0 {
		var tagIDs []string
		tagIDs, err = s.resolveTagIDs(ctx, client, req.Tags)
		if err != nil {
			return posts.PostResponse{}, err
		}
		if err = client.Tags.ReplacePostTags(ctx, post.ID, tagIDs); err != nil {
			return posts.PostResponse{}, err
		}
	}

	if err = client.Commit(); err != nil {
		return posts.PostResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"post_id":    post.ID,
		"slug":       post.Slug,
	}).Info("Post created")

	return s.getPostResponseByID(ctx, post.ID)
}

// GetPublishedPostBySlug serves the public permalink. Drafts answer as if
// they did not exist. Cache trouble degrades to a database read.
func (s *postsService) GetPublishedPostBySlug(ctx context.Context, postSlug string) (posts.PostResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	cached, err := s.cache.Get(ctx, postCacheKey(postSlug))
	if err == nil {
		var response posts.PostResponse
		if err := json.UnmarshalFromString(cached, &response); err == nil {
			return response, nil
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"slug":       postSlug,
		}).Warn("Discarding undecodable cache entry")
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Cache read failed, falling back to database")
	}

	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return posts.PostResponse{}, err
	}

	post, err := client.Posts.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return posts.PostResponse{}, err
	}

	if post.Status != entity.PostStatusPublished {
		return posts.PostResponse{}, posts.ErrPostNotFound
	}

	post, err = s.withTags(ctx, client, post)
	if err != nil {
		return posts.PostResponse{}, err
	}

	response := makePostResponse(post)

	if encoded, err := json.MarshalToString(response); err == nil {
		if err := s.cache.Set(ctx, postCacheKey(postSlug), encoded, postCacheTTL); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Cache write failed")
		}
	}

	return response, nil
}

func (s *postsService) ListPublishedPosts(ctx context.Context, query posts.ListPostsQuery) (*posts.PostListResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	page, limit := clampPaging(query.Page, query.Limit)

	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	filter := entity.PostFilter{
		Status: entity.PostStatusPublished,
		Search: query.Search,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if query.Category != "" {
		category, err := client.Categories.GetCategoryBySlug(ctx, query.Category)
		if err != nil {
			if errors.Is(err, posts.ErrCategoryNotFound) {
				// An unknown category filters everything out rather
				// than erroring, matching how the listing treats any
				// other filter with no matches.
				return &posts.PostListResponse{
					Posts:    []posts.PostResponse{},
					Page:     page,
					PageSize: limit,
				}, nil
			}
			return nil, err
		}
		filter.CategoryID = category.ID
	}

	items, total, err := client.Posts.ListPosts(ctx, filter)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to list published posts")
		return nil, err
	}

	return s.assemblePage(ctx, client, items, total, page, limit, query.Tag)
}

func (s *postsService) ListMyPosts(ctx context.Context, author entity.UserLoginData, query posts.ListPostsQuery) (*posts.PostListResponse, error) {
	page, limit := clampPaging(query.Page, query.Limit)

	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	filter := entity.PostFilter{
		AuthorID: author.ID,
		Status:   query.Status,
		Search:   query.Search,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	items, total, err := client.Posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.assemblePage(ctx, client, items, total, page, limit, "")
}

func (s *postsService) UpdatePost(ctx context.Context, postSlug string, req posts.UpdatePostRequest, user entity.UserLoginData) (res posts.PostResponse, err error) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.postsRepo.NewClient(true)
	if err != nil {
		return posts.PostResponse{}, err
	}
	defer func() {
		if err != nil {
			if rbErr := client.Rollback(); rbErr != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      rbErr.Error(),
				}).Error("UpdatePost rollback failed")
			}
		}
	}()

	post, err := client.Posts.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return posts.PostResponse{}, err
	}

	if user.Role != entity.RoleAdmin && post.AuthorID != user.ID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"post_id":    post.ID,
			"user_id":    user.ID,
		}).Warn("Rejected post update by non-owner")
		err = posts.ErrNotPostOwner
		return posts.PostResponse{}, err
	}

	previousSlug := post.Slug

	if req.Title != "" && req.Title != post.Title {
		post.Title = req.Title
		post.Slug, err = s.generatePostSlug(ctx, client, req.Title, post.ID)
		if err != nil {
			return posts.PostResponse{}, err
		}
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Excerpt != "" {
		post.Excerpt = req.Excerpt
	}
	if req.FeaturedImage != "" {
		post.FeaturedImage = req.FeaturedImage
	}
	if req.CategoryID != "" {
		if _, err = client.Categories.GetCategoryByID(ctx, req.CategoryID); err != nil {
			return posts.PostResponse{}, err
		}
		post.CategoryID = req.CategoryID
	}
	if req.Status != "" && req.Status != post.Status {
		post.Status = req.Status
		// published_at marks the first publication only. Unpublishing
		// and republishing keeps the original timestamp.
		if req.Status == entity.PostStatusPublished && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
	}

	if err = client.Posts.UpdatePost(ctx, post); err != nil {
		return posts.PostResponse{}, err
	}

	if req.Tags != nil {
		var tagIDs []string
		tagIDs, err = s.resolveTagIDs(ctx, client, req.Tags)
		if err != nil {
			return posts.PostResponse{}, err
		}
		if err = client.Tags.ReplacePostTags(ctx, post.ID, tagIDs); err != nil {
			return posts.PostResponse{}, err
		}
	}

	if err = client.Commit(); err != nil {
		return posts.PostResponse{}, err
	}

	s.invalidatePostCache(ctx, previousSlug, post.Slug)

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"post_id":    post.ID,
	}).Info("Post updated")

	return s.getPostResponseByID(ctx, post.ID)
}

func (s *postsService) DeletePost(ctx context.Context, postSlug string, user entity.UserLoginData) (err error) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.postsRepo.NewClient(true)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := client.Rollback(); rbErr != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      rbErr.Error(),
				}).Error("DeletePost rollback failed")
			}
		}
	}()

	post, err := client.Posts.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return err
	}

	if user.Role != entity.RoleAdmin && post.AuthorID != user.ID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"post_id":    post.ID,
			"user_id":    user.ID,
		}).Warn("Rejected post delete by non-owner")
		err = posts.ErrNotPostOwner
		return err
	}

	// Children go first; the schema has no cascades.
	if err = client.Comments.DeleteCommentsByPostID(ctx, post.ID); err != nil {
		return err
	}
	if err = client.Tags.ReplacePostTags(ctx, post.ID, nil); err != nil {
		return err
	}
	if err = client.Posts.DeletePost(ctx, post.ID); err != nil {
		return err
	}

	if err = client.Commit(); err != nil {
		return err
	}

	s.invalidatePostCache(ctx, post.Slug, "")

	if post.FeaturedImage != "" {
		imageURL := post.FeaturedImage
		go func() {
			if err := s.s3Client.DeleteFile(imageURL); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("Failed to delete featured image")
			}
		}()
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"post_id":    post.ID,
	}).Info("Post deleted")

	return nil
}

func (s *postsService) UploadImage(ctx context.Context, file *multipart.FileHeader) (posts.UploadResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.utils.ValidateImageFile(file); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected image upload")
		return posts.UploadResponse{}, posts.ErrInvalidFileType
	}

	url, err := s.s3Client.UploadFile(file, "posts")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to upload image")
		return posts.UploadResponse{}, posts.ErrFailedToUploadFile
	}

	return posts.UploadResponse{URL: url}, nil
}

func (s *postsService) withTags(ctx context.Context, client postRepository.Client, post entity.Post) (entity.Post, error) {
	tags, err := client.Tags.ListTagsByPostID(ctx, post.ID)
	if err != nil {
		return post, err
	}
	post.Tags = tags
	return post, nil
}

func (s *postsService) getPostResponseByID(ctx context.Context, id string) (posts.PostResponse, error) {
	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return posts.PostResponse{}, err
	}

	post, err := client.Posts.GetPostByID(ctx, id)
	if err != nil {
		return posts.PostResponse{}, err
	}

	post, err = s.withTags(ctx, client, post)
	if err != nil {
		return posts.PostResponse{}, err
	}

	return makePostResponse(post), nil
}

// assemblePage loads tags for a page of posts in one round trip and
// applies the tag filter, which stays out of the SQL on purpose.
func (s *postsService) assemblePage(ctx context.Context, client postRepository.Client, items []entity.Post, total, page, limit int, tagSlug string) (*posts.PostListResponse, error) {
	ids := make([]string, 0, len(items))
	for _, post := range items {
		ids = append(ids, post.ID)
	}

	tagsByPost, err := client.Tags.ListTagsForPosts(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]posts.PostResponse, 0, len(items))
	for _, post := range items {
		post.Tags = tagsByPost[post.ID]
		if tagSlug != "" && !hasTag(post.Tags, tagSlug) {
			continue
		}
		responses = append(responses, makePostResponse(post))
	}

	return &posts.PostListResponse{
		Posts:      responses,
		Total:      total,
		Page:       page,
		PageSize:   limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func hasTag(tags []entity.Tag, tagSlug string) bool {
	for _, tag := range tags {
		if tag.Slug == tagSlug {
			return true
		}
	}
	return false
}

func (s *postsService) invalidatePostCache(ctx context.Context, slugs ...string) {
	requestID := contextPkg.GetRequestID(ctx)
	for _, postSlug := range slugs {
		if postSlug == "" {
			continue
		}
		if err := s.cache.Delete(ctx, postCacheKey(postSlug)); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"slug":       postSlug,
				"error":      err.Error(),
			}).Warn("Cache invalidation failed")
		}
	}
}
