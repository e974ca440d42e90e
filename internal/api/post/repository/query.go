package postRepository

const (
	queryCreatePost = `
INSERT INTO posts (id, author_id, title, slug, content, excerpt, featured_image, category_id, status, published_at, created_at, updated_at)
VALUES (:id, :author_id, :title, :slug, :content, :excerpt, :featured_image, :category_id, :status, :published_at, :created_at, :updated_at)`

	querySelectPost = `
SELECT p.id, p.author_id, p.title, p.slug, p.content, p.excerpt, p.featured_image,
       p.category_id, p.status, p.published_at, p.created_at, p.updated_at,
       u.name AS author_name, u.email AS author_email, u.bio AS author_bio, u.avatar_url AS author_avatar_url,
       c.name AS category_name, c.slug AS category_slug, c.description AS category_description
FROM posts p
    JOIN users u ON u.id = p.author_id
    LEFT JOIN categories c ON c.id = p.category_id`

	queryGetPostByID = querySelectPost + `
WHERE p.id = :id`

	queryGetPostBySlug = querySelectPost + `
WHERE p.slug = :slug`

	queryCountPosts = `
SELECT COUNT(*)
FROM posts p`

	queryOrderPosts = `
ORDER BY p.published_at DESC NULLS LAST, p.created_at DESC
LIMIT :limit OFFSET :offset`

	queryPostSlugExists = `
SELECT EXISTS (
    SELECT 1 FROM posts
    WHERE slug = :slug AND (:exclude_id = '' OR id != :exclude_id)
)`

	queryUpdatePost = `
UPDATE posts
SET title = :title,
    slug = :slug,
    content = :content,
    excerpt = :excerpt,
    featured_image = :featured_image,
    category_id = :category_id,
    status = :status,
    published_at = :published_at,
    updated_at = :updated_at
WHERE id = :id`

	queryDeletePost = `
DELETE FROM posts
WHERE id = :id`

	queryCreateCategory = `
INSERT INTO categories (id, name, slug, description, created_at)
VALUES (:id, :name, :slug, :description, :created_at)`

	queryGetCategoryByID = `
SELECT id, name, slug, description, created_at
FROM categories
    WHERE id = :id`

	queryGetCategoryBySlug = `
SELECT id, name, slug, description, created_at
FROM categories
    WHERE slug = :slug`

	queryGetAllCategories = `
SELECT id, name, slug, description, created_at
FROM categories
ORDER BY name ASC`

	queryCategorySlugExists = `
SELECT EXISTS (
    SELECT 1 FROM categories WHERE slug = :slug
)`

	queryUpdateCategory = `
UPDATE categories
SET name = :name,
    description = :description
WHERE id = :id`

	queryDetachCategoryFromPosts = `
UPDATE posts
SET category_id = NULL
WHERE category_id = :category_id`

	queryDeleteCategory = `
DELETE FROM categories
WHERE id = :id`

	queryCreateTag = `
INSERT INTO tags (id, name, slug, created_at)
VALUES (:id, :name, :slug, :created_at)`

	queryGetTagBySlug = `
SELECT id, name, slug, created_at
FROM tags
    WHERE slug = :slug`

	queryGetAllTags = `
SELECT id, name, slug, created_at
FROM tags
ORDER BY name ASC`

	queryTagSlugExists = `
SELECT EXISTS (
    SELECT 1 FROM tags WHERE slug = :slug
)`

	queryListTagsByPostID = `
SELECT t.id, t.name, t.slug, t.created_at
FROM tags t
    JOIN post_tags pt ON pt.tag_id = t.id
WHERE pt.post_id = :post_id
ORDER BY t.name ASC`

	queryListTagsForPosts = `
SELECT pt.post_id AS post_id, t.id, t.name, t.slug, t.created_at
FROM tags t
    JOIN post_tags pt ON pt.tag_id = t.id
WHERE pt.post_id IN (?)
ORDER BY t.name ASC`

	queryDeletePostTagsByPostID = `
DELETE FROM post_tags
WHERE post_id = :post_id`

	queryInsertPostTag = `
INSERT INTO post_tags (post_id, tag_id)
VALUES (:post_id, :tag_id)`

	queryDeletePostTagsByTagID = `
DELETE FROM post_tags
WHERE tag_id = :tag_id`

	queryDeleteTag = `
DELETE FROM tags
WHERE id = :id`

	queryCreateComment = `
INSERT INTO comments (id, post_id, user_id, content, created_at, updated_at)
VALUES (:id, :post_id, :user_id, :content, :created_at, :updated_at)`

	querySelectComment = `
SELECT cm.id, cm.post_id, cm.user_id, cm.content, cm.created_at, cm.updated_at,
       u.name AS author_name, u.avatar_url AS author_avatar_url
FROM comments cm
    JOIN users u ON u.id = cm.user_id`

	queryGetCommentByID = querySelectComment + `
WHERE cm.id = :id`

	queryListCommentsByPostID = querySelectComment + `
WHERE cm.post_id = :post_id
ORDER BY cm.created_at ASC`

	queryDeleteComment = `
DELETE FROM comments
WHERE id = :id`

	queryDeleteCommentsByPostID = `
DELETE FROM comments
WHERE post_id = :post_id`
)
