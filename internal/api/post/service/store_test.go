package postService_test

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	posts "inkpress/internal/api/post"
	postRepository "inkpress/internal/api/post/repository"
	"inkpress/internal/entity"
)

// memStore is an in-memory stand-in for the posts repository. All four
// relations share the same maps behind one mutex, and every client returned
// by NewClient operates on that shared state, so Commit and Rollback are
// no-ops.
type memStore struct {
	mu         sync.Mutex
	users      map[string]entity.User
	posts      map[string]entity.Post
	categories map[string]entity.Category
	tags       map[string]entity.Tag
	comments   map[string]entity.Comment
	postTags   map[string][]string

	// listPostsErr forces ListPosts to fail, for exercising the
	// degraded read path.
	listPostsErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]entity.User{},
		posts:      map[string]entity.Post{},
		categories: map[string]entity.Category{},
		tags:       map[string]entity.Tag{},
		comments:   map[string]entity.Comment{},
		postTags:   map[string][]string{},
	}
}

func (s *memStore) NewClient(tx bool) (postRepository.Client, error) {
	return postRepository.Client{
		Posts:      &memPostsRelation{s: s},
		Categories: &memCategoriesRelation{s: s},
		Tags:       &memTagsRelation{s: s},
		Comments:   &memCommentsRelation{s: s},
		Commit:     func() error { return nil },
		Rollback:   func() error { return nil },
	}, nil
}

func (s *memStore) addUser(user entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

// loadPost attaches the author and category the SQL layer would join in.
// Callers hold s.mu.
func (s *memStore) loadPost(post entity.Post) entity.Post {
	if user, ok := s.users[post.AuthorID]; ok {
		author := user
		post.Author = &author
	}
	if category, ok := s.categories[post.CategoryID]; ok {
		c := category
		post.Category = &c
	}
	return post
}

type memPostsRelation struct {
	s *memStore
}

func (r *memPostsRelation) CreatePost(_ context.Context, post entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.posts[post.ID] = post
	return nil
}

func (r *memPostsRelation) GetPostByID(_ context.Context, id string) (entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post, ok := r.s.posts[id]
	if !ok {
		return entity.Post{}, posts.ErrPostNotFound
	}
	return r.s.loadPost(post), nil
}

func (r *memPostsRelation) GetPostBySlug(_ context.Context, slug string) (entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, post := range r.s.posts {
		if post.Slug == slug {
			return r.s.loadPost(post), nil
		}
	}
	return entity.Post{}, posts.ErrPostNotFound
}

func (r *memPostsRelation) ListPosts(_ context.Context, filter entity.PostFilter) ([]entity.Post, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.listPostsErr != nil {
		return nil, 0, r.s.listPostsErr
	}

	var matched []entity.Post
	for _, post := range r.s.posts {
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && post.AuthorID != filter.AuthorID {
			continue
		}
		if filter.CategoryID != "" && post.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Search != "" && !matchesSearch(post, filter.Search) {
			continue
		}
		matched = append(matched, r.s.loadPost(post))
	}

	// published_at descending with drafts last, then created_at descending.
	sort.Slice(matched, func(i, j int) bool {
		pi, pj := matched[i].PublishedAt, matched[j].PublishedAt
		switch {
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		case pi != nil && pj != nil && !pi.Equal(*pj):
			return pi.After(*pj)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func matchesSearch(post entity.Post, search string) bool {
	needle := strings.ToLower(search)
	for _, haystack := range []string{post.Title, post.Content, post.Excerpt} {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

func (r *memPostsRelation) SlugExists(_ context.Context, slug string, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, post := range r.s.posts {
		if post.Slug == slug && post.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPostsRelation) UpdatePost(_ context.Context, post entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.posts[post.ID]
	if !ok {
		return posts.ErrPostNotFound
	}

	post.AuthorID = stored.AuthorID
	post.CreatedAt = stored.CreatedAt
	post.UpdatedAt = time.Now()
	post.Author, post.Category, post.Tags = nil, nil, nil
	r.s.posts[post.ID] = post
	return nil
}

func (r *memPostsRelation) DeletePost(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return posts.ErrPostNotFound
	}
	delete(r.s.posts, id)
	return nil
}

type memCategoriesRelation struct {
	s *memStore
}

func (r *memCategoriesRelation) CreateCategory(_ context.Context, category entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.categories {
		if existing.Slug == category.Slug {
			return posts.ErrCategoryNameTaken
		}
	}
	r.s.categories[category.ID] = category
	return nil
}

func (r *memCategoriesRelation) GetCategoryByID(_ context.Context, id string) (entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	category, ok := r.s.categories[id]
	if !ok {
		return entity.Category{}, posts.ErrCategoryNotFound
	}
	return category, nil
}

func (r *memCategoriesRelation) GetCategoryBySlug(_ context.Context, slug string) (entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, category := range r.s.categories {
		if category.Slug == slug {
			return category, nil
		}
	}
	return entity.Category{}, posts.ErrCategoryNotFound
}

func (r *memCategoriesRelation) GetAllCategories(_ context.Context) ([]entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]entity.Category, 0, len(r.s.categories))
	for _, category := range r.s.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memCategoriesRelation) SlugExists(_ context.Context, slug string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, category := range r.s.categories {
		if category.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCategoriesRelation) UpdateCategory(_ context.Context, category entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.categories[category.ID]
	if !ok {
		return posts.ErrCategoryNotFound
	}
	category.CreatedAt = stored.CreatedAt
	r.s.categories[category.ID] = category
	return nil
}

func (r *memCategoriesRelation) DetachCategoryFromPosts(_ context.Context, categoryID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, post := range r.s.posts {
		if post.CategoryID == categoryID {
			post.CategoryID = ""
			r.s.posts[id] = post
		}
	}
	return nil
}

func (r *memCategoriesRelation) DeleteCategory(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return posts.ErrCategoryNotFound
	}
	delete(r.s.categories, id)
	return nil
}

type memTagsRelation struct {
	s *memStore
}

func (r *memTagsRelation) CreateTag(_ context.Context, tag entity.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.tags {
		if existing.Slug == tag.Slug {
			return posts.ErrTagNameTaken
		}
	}
	r.s.tags[tag.ID] = tag
	return nil
}

func (r *memTagsRelation) GetTagBySlug(_ context.Context, slug string) (entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, tag := range r.s.tags {
		if tag.Slug == slug {
			return tag, nil
		}
	}
	return entity.Tag{}, posts.ErrTagNotFound
}

func (r *memTagsRelation) GetAllTags(_ context.Context) ([]entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]entity.Tag, 0, len(r.s.tags))
	for _, tag := range r.s.tags {
		result = append(result, tag)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memTagsRelation) SlugExists(_ context.Context, slug string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, tag := range r.s.tags {
		if tag.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTagsRelation) ListTagsByPostID(_ context.Context, postID string) ([]entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.tagsOfPost(postID), nil
}

func (r *memTagsRelation) ListTagsForPosts(_ context.Context, postIDs []string) (map[string][]entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make(map[string][]entity.Tag, len(postIDs))
	for _, postID := range postIDs {
		if tags := r.s.tagsOfPost(postID); len(tags) > 0 {
			result[postID] = tags
		}
	}
	return result, nil
}

// tagsOfPost resolves a post's tag ids to tags, name ascending. Callers
// hold s.mu.
func (s *memStore) tagsOfPost(postID string) []entity.Tag {
	var result []entity.Tag
	for _, tagID := range s.postTags[postID] {
		if tag, ok := s.tags[tagID]; ok {
			result = append(result, tag)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (r *memTagsRelation) ReplacePostTags(_ context.Context, postID string, tagIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(tagIDs) == 0 {
		delete(r.s.postTags, postID)
		return nil
	}
	r.s.postTags[postID] = append([]string(nil), tagIDs...)
	return nil
}

func (r *memTagsRelation) DeletePostTagsByTagID(_ context.Context, tagID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for postID, tagIDs := range r.s.postTags {
		kept := tagIDs[:0]
		for _, id := range tagIDs {
			if id != tagID {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(r.s.postTags, postID)
			continue
		}
		r.s.postTags[postID] = kept
	}
	return nil
}

func (r *memTagsRelation) DeleteTag(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tags[id]; !ok {
		return posts.ErrTagNotFound
	}
	delete(r.s.tags, id)
	return nil
}

type memCommentsRelation struct {
	s *memStore
}

func (r *memCommentsRelation) CreateComment(_ context.Context, comment entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.comments[comment.ID] = comment
	return nil
}

func (r *memCommentsRelation) GetCommentByID(_ context.Context, id string) (entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comment, ok := r.s.comments[id]
	if !ok {
		return entity.Comment{}, posts.ErrCommentNotFound
	}
	return r.s.loadComment(comment), nil
}

func (r *memCommentsRelation) ListCommentsByPostID(_ context.Context, postID string) ([]entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []entity.Comment
	for _, comment := range r.s.comments {
		if comment.PostID == postID {
			result = append(result, r.s.loadComment(comment))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// loadComment attaches the comment author. Callers hold s.mu.
func (s *memStore) loadComment(comment entity.Comment) entity.Comment {
	if user, ok := s.users[comment.UserID]; ok {
		author := user
		comment.Author = &author
	}
	return comment
}

func (r *memCommentsRelation) DeleteComment(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return posts.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *memCommentsRelation) DeleteCommentsByPostID(_ context.Context, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, comment := range r.s.comments {
		if comment.PostID == postID {
			delete(r.s.comments, id)
		}
	}
	return nil
}

type sentMail struct {
	authorEmail   string
	postTitle     string
	commenterName string
	comment       string
}

// fakeMailer pushes every notification onto a channel so tests can wait
// for the asynchronous send.
type fakeMailer struct {
	sent chan sentMail
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 8)}
}

func (m *fakeMailer) SendCommentNotification(authorEmail, postTitle, commenterName, comment string) error {
	m.sent <- sentMail{
		authorEmail:   authorEmail,
		postTitle:     postTitle,
		commenterName: commenterName,
		comment:       comment,
	}
	return nil
}

// fakeS3 records uploads and signals deletes on a channel, since post
// deletion removes the featured image in the background.
type fakeS3 struct {
	mu       sync.Mutex
	uploaded []string
	deleted  chan string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{deleted: make(chan string, 8)}
}

func (f *fakeS3) UploadFile(file *multipart.FileHeader, folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	url := "https://cdn.test/" + folder + "/" + file.Filename
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeS3) DeleteFile(fileURL string) error {
	f.deleted <- fileURL
	return nil
}
