package authRepository

const (
	queryCreateUser = `
INSERT INTO users (id, email, name, password, role, bio, avatar_url, created_at, updated_at)
VALUES (:id, :email, :name, :password, :role, :bio, :avatar_url, :created_at, :updated_at)`

	queryGetByID = `
SELECT id, email, name, password, role, bio, avatar_url, created_at, updated_at
FROM users
    WHERE id = :id`

	queryGetByEmail = `
SELECT id, email, name, password, role, bio, avatar_url, created_at, updated_at
FROM users
    WHERE email = :email`

	queryUpdateProfile = `
UPDATE users
SET name = :name,
    bio = :bio,
    updated_at = :updated_at
WHERE id = :id`

	queryUpdateAvatar = `
UPDATE users
SET avatar_url = :avatar_url,
    updated_at = :updated_at
WHERE id = :id`
)
