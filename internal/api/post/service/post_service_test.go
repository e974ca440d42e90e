package postService_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	posts "inkpress/internal/api/post"
	postService "inkpress/internal/api/post/service"
	"inkpress/internal/entity"
	redisPkg "inkpress/pkg/redis"
	"inkpress/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memStore
	mini  *miniredis.Miniredis
	mail  *fakeMailer
	s3    *fakeS3
	svc   postService.IPostsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	mini := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	mail := newFakeMailer()
	s3 := newFakeS3()

	svc := postService.NewPostsService(log, store, redisPkg.NewWithClient(client), mail, s3, utils.New())

	return &fixture{store: store, mini: mini, mail: mail, s3: s3, svc: svc}
}

func (f *fixture) newAuthor(t *testing.T, name, email string) entity.UserLoginData {
	t.Helper()

	id, err := utils.New().NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)

	f.store.addUser(entity.User{
		ID:    id,
		Name:  name,
		Email: email,
		Role:  entity.RoleAuthor,
	})

	return entity.UserLoginData{ID: id, Email: email, Role: entity.RoleAuthor}
}

func (f *fixture) newReader(t *testing.T, name, email string) entity.UserLoginData {
	t.Helper()

	id, err := utils.New().NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)

	f.store.addUser(entity.User{
		ID:    id,
		Name:  name,
		Email: email,
		Role:  entity.RoleReader,
	})

	return entity.UserLoginData{ID: id, Email: email, Role: entity.RoleReader}
}

func (f *fixture) admin(t *testing.T) entity.UserLoginData {
	t.Helper()

	id, err := utils.New().NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)

	f.store.addUser(entity.User{
		ID:    id,
		Name:  "Admin",
		Email: "admin@example.com",
		Role:  entity.RoleAdmin,
	})

	return entity.UserLoginData{ID: id, Email: "admin@example.com", Role: entity.RoleAdmin}
}

func (f *fixture) createPublished(t *testing.T, author entity.UserLoginData, title string, tags ...string) posts.PostResponse {
	t.Helper()

	created, err := f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:   title,
		Content: "Content of " + title,
		Status:  entity.PostStatusPublished,
		Tags:    tags,
	}, author)
	require.NoError(t, err)
	return created
}

func TestCreatePostGeneratesUniqueSlugs(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	first := f.createPublished(t, author, "Hello World")
	second := f.createPublished(t, author, "Hello World")
	third := f.createPublished(t, author, "Hello World!")

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)
	assert.Equal(t, "hello-world-2", third.Slug)
}

func TestCreatePostDefaultsToDraft(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created, err := f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:   "Work in Progress",
		Content: "Half-written thoughts.",
	}, author)
	require.NoError(t, err)

	assert.Equal(t, entity.PostStatusDraft, created.Status)
	assert.Nil(t, created.PublishedAt)
}

func TestCreatePostPublishedSetsPublishedAt(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created := f.createPublished(t, author, "Shipped")

	require.NotNil(t, created.PublishedAt)
	assert.WithinDuration(t, time.Now(), *created.PublishedAt, 5*time.Second)
}

func TestCreatePostRejectsUnsluggableTitle(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	_, err := f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:   "!!! ???",
		Content: "symbols only",
	}, author)
	assert.ErrorIs(t, err, posts.ErrEmptyTitle)
}

func TestCreatePostUnknownCategory(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	_, err := f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:      "Misfiled",
		Content:    "content",
		CategoryID: "01HTESTTESTTESTTESTTESTTES",
	}, author)
	assert.ErrorIs(t, err, posts.ErrCategoryNotFound)
}

func TestCreatePostResolvesTags(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	// "Go" and "go" normalize to the same slug and collapse into one tag.
	created := f.createPublished(t, author, "Tagged Post", "Go", "go", "Testing")

	require.Len(t, created.Tags, 2)
	slugs := []string{created.Tags[0].Slug, created.Tags[1].Slug}
	assert.ElementsMatch(t, []string{"go", "testing"}, slugs)

	// A second post reuses the existing tags instead of minting new ids.
	again := f.createPublished(t, author, "Also Tagged", "go")
	require.Len(t, again.Tags, 1)
	assert.Equal(t, "go", again.Tags[0].Slug)

	all, err := f.svc.GetAllTags(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetPublishedPostBySlug(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	f.createPublished(t, author, "Visible", "go")

	got, err := f.svc.GetPublishedPostBySlug(context.Background(), "visible")
	require.NoError(t, err)
	assert.Equal(t, "Visible", got.Title)
	assert.Equal(t, "Ada", got.Author.Name)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "go", got.Tags[0].Slug)
}

func TestGetPublishedPostHidesDrafts(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	_, err := f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:   "Secret Draft",
		Content: "not ready",
	}, author)
	require.NoError(t, err)

	_, err = f.svc.GetPublishedPostBySlug(context.Background(), "secret-draft")
	assert.ErrorIs(t, err, posts.ErrPostNotFound)

	_, err = f.svc.GetPublishedPostBySlug(context.Background(), "never-existed")
	assert.ErrorIs(t, err, posts.ErrPostNotFound)
}

func TestGetPublishedPostServedFromCache(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created := f.createPublished(t, author, "Cache Me")

	first, err := f.svc.GetPublishedPostBySlug(context.Background(), "cache-me")
	require.NoError(t, err)
	assert.Equal(t, "Cache Me", first.Title)

	// Mutate the store behind the cache's back. A second read must still
	// see the cached title.
	f.store.mu.Lock()
	post := f.store.posts[created.ID]
	post.Title = "Changed Underneath"
	f.store.posts[created.ID] = post
	f.store.mu.Unlock()

	second, err := f.svc.GetPublishedPostBySlug(context.Background(), "cache-me")
	require.NoError(t, err)
	assert.Equal(t, "Cache Me", second.Title)

	// Once the entry expires the store is authoritative again.
	f.mini.FastForward(11 * time.Minute)

	third, err := f.svc.GetPublishedPostBySlug(context.Background(), "cache-me")
	require.NoError(t, err)
	assert.Equal(t, "Changed Underneath", third.Title)
}

func TestGetPublishedPostCacheOutage(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	f.createPublished(t, author, "Still Readable")

	f.mini.SetError("cache is down")
	defer f.mini.SetError("")

	got, err := f.svc.GetPublishedPostBySlug(context.Background(), "still-readable")
	require.NoError(t, err)
	assert.Equal(t, "Still Readable", got.Title)
}

func TestGetPublishedPostDiscardsUndecodableCacheEntry(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	f.createPublished(t, author, "Corrupted Entry")

	require.NoError(t, f.mini.Set("post:slug:corrupted-entry", "{not json"))

	got, err := f.svc.GetPublishedPostBySlug(context.Background(), "corrupted-entry")
	require.NoError(t, err)
	assert.Equal(t, "Corrupted Entry", got.Title)
}

func TestListPublishedPostsPagination(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	for i := 1; i <= 25; i++ {
		f.createPublished(t, author, fmt.Sprintf("Post Number %d", i))
	}

	page, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, page.Posts, 10)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 3, page.TotalPages)

	last, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, last.Posts, 5)

	beyond, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)
	assert.Equal(t, 25, beyond.Total)
}

func TestListPublishedPostsDefaultsPaging(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	for i := 1; i <= 12; i++ {
		f.createPublished(t, author, fmt.Sprintf("Entry %d", i))
	}

	page, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{})
	require.NoError(t, err)

	assert.Len(t, page.Posts, 10)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 2, page.TotalPages)
}

func TestListPublishedPostsExcludesDrafts(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	f.createPublished(t, author, "Public One")
	f.createPublished(t, author, "Public Two")
	_, err := f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:   "Hidden Draft",
		Content: "shh",
	}, author)
	require.NoError(t, err)

	page, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Total)
	for _, post := range page.Posts {
		assert.Equal(t, entity.PostStatusPublished, post.Status)
	}
}

func TestListPublishedPostsNewestFirst(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	f.createPublished(t, author, "Older")
	time.Sleep(2 * time.Millisecond)
	f.createPublished(t, author, "Newer")

	page, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{})
	require.NoError(t, err)

	require.Len(t, page.Posts, 2)
	assert.Equal(t, "Newer", page.Posts[0].Title)
	assert.Equal(t, "Older", page.Posts[1].Title)
}

func TestListPublishedPostsUnknownCategory(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	f.createPublished(t, author, "Uncategorized")

	page, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{Category: "no-such-category"})
	require.NoError(t, err)

	assert.NotNil(t, page.Posts)
	assert.Empty(t, page.Posts)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
}

func TestListPublishedPostsCategoryFilter(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	category, err := f.svc.CreateCategory(context.Background(), posts.CreateCategoryRequest{Name: "Engineering"})
	require.NoError(t, err)

	_, err = f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:      "In Engineering",
		Content:    "content",
		CategoryID: category.ID,
		Status:     entity.PostStatusPublished,
	}, author)
	require.NoError(t, err)
	f.createPublished(t, author, "Elsewhere")

	page, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{Category: "engineering"})
	require.NoError(t, err)

	require.Len(t, page.Posts, 1)
	assert.Equal(t, "In Engineering", page.Posts[0].Title)
	require.NotNil(t, page.Posts[0].Category)
	assert.Equal(t, "engineering", page.Posts[0].Category.Slug)
}

func TestListPublishedPostsTagFilter(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	f.createPublished(t, author, "About Go", "go")
	f.createPublished(t, author, "More Go", "go", "testing")
	f.createPublished(t, author, "About Rust", "rust")

	page, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{Tag: "go"})
	require.NoError(t, err)

	require.Len(t, page.Posts, 2)
	for _, post := range page.Posts {
		assert.True(t, hasTagSlug(post.Tags, "go"), "post %q should carry the go tag", post.Title)
	}
}

func hasTagSlug(tags []posts.TagResponse, slug string) bool {
	for _, tag := range tags {
		if tag.Slug == slug {
			return true
		}
	}
	return false
}

func TestListPublishedPostsSearch(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	f.createPublished(t, author, "Profiling Go Services")
	f.createPublished(t, author, "Gardening Notes")

	page, err := f.svc.ListPublishedPosts(context.Background(), posts.ListPostsQuery{Search: "profiling"})
	require.NoError(t, err)

	require.Len(t, page.Posts, 1)
	assert.Equal(t, "Profiling Go Services", page.Posts[0].Title)
}

func TestListMyPosts(t *testing.T) {
	f := newFixture(t)
	ada := f.newAuthor(t, "Ada", "ada@example.com")
	grace := f.newAuthor(t, "Grace", "grace@example.com")

	f.createPublished(t, ada, "Ada Published")
	_, err := f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:   "Ada Draft",
		Content: "wip",
	}, ada)
	require.NoError(t, err)
	f.createPublished(t, grace, "Grace Published")

	mine, err := f.svc.ListMyPosts(context.Background(), ada, posts.ListPostsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Total)

	drafts, err := f.svc.ListMyPosts(context.Background(), ada, posts.ListPostsQuery{Status: entity.PostStatusDraft})
	require.NoError(t, err)
	require.Len(t, drafts.Posts, 1)
	assert.Equal(t, "Ada Draft", drafts.Posts[0].Title)
}

func TestUpdatePostOwnership(t *testing.T) {
	f := newFixture(t)
	ada := f.newAuthor(t, "Ada", "ada@example.com")
	grace := f.newAuthor(t, "Grace", "grace@example.com")
	admin := f.admin(t)

	created := f.createPublished(t, ada, "Contested")

	_, err := f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{Content: "hijacked"}, grace)
	assert.ErrorIs(t, err, posts.ErrNotPostOwner)

	updated, err := f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{Content: "moderated"}, admin)
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Content)
}

func TestUpdatePostKeepsFirstPublishedAt(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created := f.createPublished(t, author, "Timestamped")
	require.NotNil(t, created.PublishedAt)
	firstPublished := *created.PublishedAt

	unpublished, err := f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{
		Status: entity.PostStatusDraft,
	}, author)
	require.NoError(t, err)
	require.NotNil(t, unpublished.PublishedAt)
	assert.True(t, unpublished.PublishedAt.Equal(firstPublished))

	republished, err := f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{
		Status: entity.PostStatusPublished,
	}, author)
	require.NoError(t, err)
	require.NotNil(t, republished.PublishedAt)
	assert.True(t, republished.PublishedAt.Equal(firstPublished), "republishing must not move the original publication time")
}

func TestUpdatePostTitleRegeneratesSlug(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created := f.createPublished(t, author, "Old Title")

	updated, err := f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{
		Title: "Brand New Title",
	}, author)
	require.NoError(t, err)
	assert.Equal(t, "brand-new-title", updated.Slug)

	_, err = f.svc.GetPublishedPostBySlug(context.Background(), "old-title")
	assert.ErrorIs(t, err, posts.ErrPostNotFound)
}

func TestUpdatePostKeepsOwnSlugOnRetitle(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created := f.createPublished(t, author, "Stable Title")

	// The post's own slug must not count as a collision against itself.
	updated, err := f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{
		Title: "Stable Title!",
	}, author)
	require.NoError(t, err)
	assert.Equal(t, "stable-title", updated.Slug)
}

func TestUpdatePostTags(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created := f.createPublished(t, author, "Retagged", "go", "testing")

	// Omitting tags leaves them alone.
	updated, err := f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{
		Content: "fresh content",
	}, author)
	require.NoError(t, err)
	assert.Len(t, updated.Tags, 2)

	// A present list replaces the whole set.
	updated, err = f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{
		Tags: []string{"redis"},
	}, author)
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "redis", updated.Tags[0].Slug)

	// An empty but present list clears everything.
	updated, err = f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{
		Tags: []string{},
	}, author)
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
}

func TestUpdatePostInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created := f.createPublished(t, author, "Cached Then Updated")

	first, err := f.svc.GetPublishedPostBySlug(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Content of Cached Then Updated", first.Content)

	_, err = f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{
		Content: "rewritten",
	}, author)
	require.NoError(t, err)

	second, err := f.svc.GetPublishedPostBySlug(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", second.Content)
}

func TestUpdatePostSlugChangeInvalidatesOldKey(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	created := f.createPublished(t, author, "Moving Slug")

	_, err := f.svc.GetPublishedPostBySlug(context.Background(), created.Slug)
	require.NoError(t, err)

	_, err = f.svc.UpdatePost(context.Background(), created.Slug, posts.UpdatePostRequest{
		Title: "Moved Slug",
	}, author)
	require.NoError(t, err)

	// The stale entry under the old slug must be gone, not serve the
	// old post forever.
	assert.False(t, f.mini.Exists("post:slug:moving-slug"))

	_, err = f.svc.GetPublishedPostBySlug(context.Background(), "moving-slug")
	assert.ErrorIs(t, err, posts.ErrPostNotFound)

	moved, err := f.svc.GetPublishedPostBySlug(context.Background(), "moved-slug")
	require.NoError(t, err)
	assert.Equal(t, "Moved Slug", moved.Title)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ada := f.newAuthor(t, "Ada", "ada@example.com")
	grace := f.newAuthor(t, "Grace", "grace@example.com")

	created, err := f.svc.CreatePost(context.Background(), posts.CreatePostRequest{
		Title:         "Doomed",
		Content:       "content",
		Status:        entity.PostStatusPublished,
		Tags:          []string{"go"},
		FeaturedImage: "https://cdn.test/posts/doomed.png",
	}, ada)
	require.NoError(t, err)

	_, err = f.svc.CreateComment(context.Background(), created.Slug, posts.CreateCommentRequest{
		Content: "nice post",
	}, grace)
	require.NoError(t, err)

	err = f.svc.DeletePost(context.Background(), created.Slug, grace)
	assert.ErrorIs(t, err, posts.ErrNotPostOwner)

	require.NoError(t, f.svc.DeletePost(context.Background(), created.Slug, ada))

	_, err = f.svc.GetPublishedPostBySlug(context.Background(), created.Slug)
	assert.ErrorIs(t, err, posts.ErrPostNotFound)

	// Comments and tag links went down with the post.
	f.store.mu.Lock()
	assert.Empty(t, f.store.comments)
	assert.Empty(t, f.store.postTags)
	f.store.mu.Unlock()

	// The featured image is removed in the background.
	select {
	case deleted := <-f.s3.deleted:
		assert.Equal(t, "https://cdn.test/posts/doomed.png", deleted)
	case <-time.After(2 * time.Second):
		t.Fatal("featured image was never deleted")
	}
}

func TestDeletePostMissing(t *testing.T) {
	f := newFixture(t)
	author := f.newAuthor(t, "Ada", "ada@example.com")

	err := f.svc.DeletePost(context.Background(), "never-was", author)
	assert.ErrorIs(t, err, posts.ErrPostNotFound)
}
