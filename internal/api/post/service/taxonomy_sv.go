package postService

import (
	"context"
	"time"

	posts "inkpress/internal/api/post"
	"inkpress/internal/entity"
	contextPkg "inkpress/pkg/context"
	"inkpress/pkg/slug"

	"github.com/sirupsen/logrus"
)

func (s *postsService) GetAllCategories(ctx context.Context) ([]posts.CategoryResponse, error) {
	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	categories, err := client.Categories.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]posts.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, makeCategoryResponse(category))
	}
	return responses, nil
}

// CreateCategory derives the slug from the name and refuses a name whose
// slug is already in use. Unlike post titles, taxonomy names do not get
// numeric suffixes.
func (s *postsService) CreateCategory(ctx context.Context, req posts.CreateCategoryRequest) (posts.CategoryResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return posts.CategoryResponse{}, err
	}

	categorySlug := slug.Make(req.Name)
	if categorySlug == "" {
		return posts.CategoryResponse{}, posts.ErrEmptyName
	}

	exists, err := client.Categories.SlugExists(ctx, categorySlug)
	if err != nil {
		return posts.CategoryResponse{}, err
	}
	if exists {
		return posts.CategoryResponse{}, posts.ErrCategoryNameTaken
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return posts.CategoryResponse{}, err
	}

	category := entity.Category{
		ID:          id,
		Name:        req.Name,
		Slug:        categorySlug,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	if err := client.Categories.CreateCategory(ctx, category); err != nil {
		return posts.CategoryResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"category_id": category.ID,
		"slug":        category.Slug,
	}).Info("Category created")

	return makeCategoryResponse(category), nil
}

// UpdateCategory edits name and description in place. The slug is part of
// public permalinks and never changes after creation.
func (s *postsService) UpdateCategory(ctx context.Context, categorySlug string, req posts.UpdateCategoryRequest) (posts.CategoryResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return posts.CategoryResponse{}, err
	}

	category, err := client.Categories.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return posts.CategoryResponse{}, err
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Description != "" {
		category.Description = req.Description
	}

	if err := client.Categories.UpdateCategory(ctx, category); err != nil {
		return posts.CategoryResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"category_id": category.ID,
	}).Info("Category updated")

	return makeCategoryResponse(category), nil
}

func (s *postsService) DeleteCategory(ctx context.Context, categorySlug string) (err error) {
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
				}).Error("DeleteCategory rollback failed")
			}
		}
	}()

	category, err := client.Categories.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return err
	}

	// Posts keep living without a category, so clear the reference
	// before the row goes away.
	if err = client.Categories.DetachCategoryFromPosts(ctx, category.ID); err != nil {
		return err
	}
	if err = client.Categories.DeleteCategory(ctx, category.ID); err != nil {
		return err
	}

	if err = client.Commit(); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"category_id": category.ID,
	}).Info("Category deleted")

	return nil
}

func (s *postsService) GetAllTags(ctx context.Context) ([]posts.TagResponse, error) {
	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	tags, err := client.Tags.GetAllTags(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]posts.TagResponse, 0, len(tags))
	for _, tag := range tags {
		responses = append(responses, makeTagResponse(tag))
	}
	return responses, nil
}

func (s *postsService) CreateTag(ctx context.Context, req posts.CreateTagRequest) (posts.TagResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return posts.TagResponse{}, err
	}

	tagSlug := slug.Make(req.Name)
	if tagSlug == "" {
		return posts.TagResponse{}, posts.ErrEmptyName
	}

	exists, err := client.Tags.SlugExists(ctx, tagSlug)
	if err != nil {
		return posts.TagResponse{}, err
	}
	if exists {
		return posts.TagResponse{}, posts.ErrTagNameTaken
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return posts.TagResponse{}, err
	}

	tag := entity.Tag{
		ID:        id,
		Name:      req.Name,
		Slug:      tagSlug,
		CreatedAt: time.Now(),
	}

	if err := client.Tags.CreateTag(ctx, tag); err != nil {
		return posts.TagResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"tag_id":     tag.ID,
		"slug":       tag.Slug,
	}).Info("Tag created")

	return makeTagResponse(tag), nil
}

func (s *postsService) DeleteTag(ctx context.Context, tagSlug string) (err error) {
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
				}).Error("DeleteTag rollback failed")
			}
		}
	}()

	tag, err := client.Tags.GetTagBySlug(ctx, tagSlug)
	if err != nil {
		return err
	}

	if err = client.Tags.DeletePostTagsByTagID(ctx, tag.ID); err != nil {
		return err
	}
	if err = client.Tags.DeleteTag(ctx, tag.ID); err != nil {
		return err
	}

	if err = client.Commit(); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"tag_id":     tag.ID,
	}).Info("Tag deleted")

	return nil
}
