package postService_test

import (
	"context"
	"testing"

	posts "inkpress/internal/api/post"
	"inkpress/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.CreateCategory(context.Background(), posts.CreateCategoryRequest{
		Name:        "Engineering Notes",
		Description: "Deep dives",
	})
	require.NoError(t, err)

	assert.Equal(t, "Engineering Notes", created.Name)
	assert.Equal(t, "engineering-notes", created.Slug)
	assert.Equal(t, "Deep dives", created.Description)
	assert.NotEmpty(t, created.ID)
}

func TestCreateCategoryNameTaken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateCategory(context.Background(), posts.CreateCategoryRequest{Name: "DevOps"})
	require.NoError(t, err)

	// Exact duplicate and any name that normalizes to the same slug are
	// both refused; category slugs never get numeric suffixes.
	_, err = f.svc.CreateCategory(context.Background(), posts.CreateCategoryRequest{Name: "DevOps"})
	assert.ErrorIs(t, err, posts.ErrCategoryNameTaken)

	_, err = f.svc.CreateCategory(context.Background(), posts.CreateCategoryRequest{Name: "dev ops"})
	assert.ErrorIs(t, err, posts.ErrCategoryNameTaken)
}

func TestCreateCategoryRequiresSluggableName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateCategory(context.Background(), posts.CreateCategoryRequest{Name: "!!!"})
	assert.ErrorIs(t, err, posts.ErrEmptyName)
}

func TestUpdateCategoryKeepsSlug(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.CreateCategory(context.Background(), posts.CreateCategoryRequest{
		Name: "Engineering",
	})
	require.NoError(t, err)

	// Renaming edits the display name only; the slug is a permalink and
	// stays put.
	updated, err := f.svc.UpdateCategory(context.Background(), created.Slug, posts.UpdateCategoryRequest{
		Name:        "Platform Engineering",
		Description: "Infra and tooling",
	})
	require.NoError(t, err)

	assert.Equal(t, "Platform Engineering", updated.Name)
	assert.Equal(t, "engineering", updated.Slug)
	assert.Equal(t, "Infra and tooling", updated.Description)
}

func TestUpdateCategoryMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateCategory(context.Background(), "nope", posts.UpdateCategoryRequest{Name: "Renamed"})
	assert.ErrorIs(t, err, posts.ErrCategoryNotFound)
}

func TestDeleteCategoryDetachesPosts(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	category, err := f.svc.CreateCategory(context.Background(), posts.CreateCategoryRequest{Name: "Transient"})
	require.NoError(t, err)

	created, err := f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:      "Orphaned Soon",
		Content:    "content",
		CategoryID: category.ID,
		Status:     entity.PostStatusPublished,
	}, author)
	require.NoError(t, err)
	require.NotNil(t, created.Category)

	require.NoError(t, f.svc.DeleteCategory(context.Background(), category.Slug))

	// The post survives, just without a category.
	got, err := f.svc.GetPublishedPostBySlug(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Nil(t, got.Category)

	all, err := f.svc.GetAllCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetAllCategoriesSorted(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"Zig", "Ada", "Moby"} {
		_, err := f.svc.CreateCategory(context.Background(), posts.CreateCategoryRequest{Name: name})
		require.NoError(t, err)
	}

	all, err := f.svc.GetAllCategories(context.Background())
	require.NoError(t, err)

	require.Len(t, all, 3)
	assert.Equal(t, "Ada", all[0].Name)
	assert.Equal(t, "Moby", all[1].Name)
	assert.Equal(t, "Zig", all[2].Name)
}

func TestCreateTag(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.CreateTag(context.Background(), posts.CreateTagRequest{Name: "Distributed Systems"})
	require.NoError(t, err)

	assert.Equal(t, "Distributed Systems", created.Name)
	assert.Equal(t, "distributed-systems", created.Slug)

	_, err = f.svc.CreateTag(context.Background(), posts.CreateTagRequest{Name: "distributed systems"})
	assert.ErrorIs(t, err, posts.ErrTagNameTaken)

	_, err = f.svc.CreateTag(context.Background(), posts.CreateTagRequest{Name: "???"})
	assert.ErrorIs(t, err, posts.ErrEmptyName)
}

func TestDeleteTagRemovesAssociations(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created := f.createPublished(t, author, "Double Tagged", "go", "redis")

	require.NoError(t, f.svc.DeleteTag(context.Background(), "redis"))

	got, err := f.svc.GetPublishedPostBySlug(context.Background(), created.Slug)
	require.NoError(t, err)

	require.Len(t, got.Tags, 1)
	assert.Equal(t, "go", got.Tags[0].Slug)

	all, err := f.svc.GetAllTags(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "go", all[0].Slug)
}

func TestDeleteTagMissing(t *testing.T) {
	f := newFixture(t)

	err := f.svc.DeleteTag(context.Background(), "never-was")
	assert.ErrorIs(t, err, posts.ErrTagNotFound)
}
