package postService

import (
	"context"
	"errors"
	"time"

	posts "inkpress/internal/api/post"
	postRepository "inkpress/internal/api/post/repository"
	"inkpress/internal/entity"
	"inkpress/pkg/slug"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	postCacheTTL = 10 * time.Minute
)

func postCacheKey(postSlug string) string {
	return "post:slug:" + postSlug
}

// clampPaging normalizes whatever the query string produced into a sane
// page/size pair.
func clampPaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// generatePostSlug derives a unique slug for the title, probing the posts
// table. excludeID lets a post keep its own slug on update.
func (s *postsService) generatePostSlug(ctx context.Context, client postRepository.Client, title, excludeID string) (string, error) {
	result, err := s.slugGen.Unique(ctx, title, func(ctx context.Context, candidate string) (bool, error) {
		return client.Posts.SlugExists(ctx, candidate, excludeID)
	})
	if err != nil {
		if errors.Is(err, slug.ErrEmptyTitle) {
			return "", posts.ErrEmptyTitle
		}
		return "", err
	}
	return result, nil
}

// resolveTagIDs maps tag names to tag ids, creating tags that do not exist
// yet. Names that normalize to the same slug collapse into one tag.
func (s *postsService) resolveTagIDs(ctx context.Context, client postRepository.Client, names []string) ([]string, error) {
	tagIDs := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		tagSlug := slug.Make(name)
		if tagSlug == "" || seen[tagSlug] {
			continue
		}
		seen[tagSlug] = true

		tag, err := client.Tags.GetTagBySlug(ctx, tagSlug)
		if err == nil {
			tagIDs = append(tagIDs, tag.ID)
			continue
		}
		if !errors.Is(err, posts.ErrTagNotFound) {
			return nil, err
		}

		id, err := s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			return nil, err
		}

		newTag := entity.Tag{
			ID:        id,
			Name:      name,
			Slug:      tagSlug,
			CreatedAt: time.Now(),
		}
		if err := client.Tags.CreateTag(ctx, newTag); err != nil {
			return nil, err
		}

		tagIDs = append(tagIDs, id)
	}

	return tagIDs, nil
}

func makePostResponse(post entity.Post) posts.PostResponse {
	result := posts.PostResponse{
		ID:            post.ID,
		Title:         post.Title,
		Slug:          post.Slug,
		Content:       post.Content,
		Excerpt:       post.Excerpt,
		FeaturedImage: post.FeaturedImage,
		Status:        post.Status,
		PublishedAt:   post.PublishedAt,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
		Tags:          []posts.TagResponse{},
	}

	if post.Author != nil {
		result.Author = posts.AuthorResponse{
			ID:        post.Author.ID,
			Name:      post.Author.Name,
			Bio:       post.Author.Bio,
			AvatarURL: post.Author.AvatarURL,
		}
	}

	if post.Category != nil {
		result.Category = &posts.CategoryResponse{
			ID:          post.Category.ID,
			Name:        post.Category.Name,
			Slug:        post.Category.Slug,
			Description: post.Category.Description,
		}
	}

	for _, tag := range post.Tags {
		result.Tags = append(result.Tags, makeTagResponse(tag))
	}

	return result
}

func makeCommentResponse(comment entity.Comment) posts.CommentResponse {
	result := posts.CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}

	if comment.Author != nil {
		result.Author = posts.AuthorResponse{
			ID:        comment.Author.ID,
			Name:      comment.Author.Name,
			AvatarURL: comment.Author.AvatarURL,
		}
	}

	return result
}

func makeCategoryResponse(category entity.Category) posts.CategoryResponse {
	return posts.CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	}
}

func makeTagResponse(tag entity.Tag) posts.TagResponse {
	return posts.TagResponse{
		ID:   tag.ID,
		Name: tag.Name,
		Slug: tag.Slug,
	}
}
