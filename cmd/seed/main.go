package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"inkpress/database/postgres"
	authRepository "inkpress/internal/api/auth/repository"
	postRepository "inkpress/internal/api/post/repository"
	"inkpress/internal/entity"
	"inkpress/pkg/bcrypt"
	"inkpress/pkg/log"
	"inkpress/pkg/slug"
	"inkpress/pkg/utils"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	seedAuthors  = 5
	seedPosts    = 30
	seedComments = 60
)

var seedCategories = []struct {
	name        string
	description string
}{
	{"Engineering", "Deep dives into systems, languages and tooling"},
	{"Design", "Interfaces, typography and product design notes"},
	{"Product", "Roadmaps, launches and lessons learned"},
	{"Culture", "How we work together"},
}

var seedTags = []string{
	"go", "postgres", "redis", "testing", "performance",
	"api-design", "remote-work", "tutorial",
}

// seeder fills an empty database with believable demo content. Re-running
// it skips users that already exist instead of failing.
type seeder struct {
	log       *logrus.Logger
	authRepo  authRepository.Repository
	postsRepo postRepository.Repository
	bcrypt    bcrypt.IBcrypt
	utils     utils.IUtils
	slugGen   slug.Generator

	faker *gofakeit.Faker
}

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	db, err := postgres.New()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	s := &seeder{
		log:       logger,
		authRepo:  authRepository.New(db, logger),
		postsRepo: postRepository.New(db, logger),
		bcrypt:    bcrypt.New(),
		utils:     utils.New(),
		faker:     gofakeit.New(42),
	}

	ctx := context.Background()

	users, err := s.seedUsers(ctx)
	if err != nil {
		logger.Fatalf("Failed to seed users: %v", err)
	}

	categoryIDs, err := s.seedCategories(ctx)
	if err != nil {
		logger.Fatalf("Failed to seed categories: %v", err)
	}

	tagIDs, err := s.seedTags(ctx)
	if err != nil {
		logger.Fatalf("Failed to seed tags: %v", err)
	}

	postIDs, err := s.seedPosts(ctx, users, categoryIDs, tagIDs)
	if err != nil {
		logger.Fatalf("Failed to seed posts: %v", err)
	}

	if err := s.seedComments(ctx, users, postIDs); err != nil {
		logger.Fatalf("Failed to seed comments: %v", err)
	}

	logger.Info("Seeding finished")
}

func (s *seeder) seedUsers(ctx context.Context) ([]entity.User, error) {
	repo, err := s.authRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "inkpress-demo"
	}

	hashed, err := s.bcrypt.HashPassword(password)
	if err != nil {
		return nil, err
	}

	users := make([]entity.User, 0, seedAuthors+1)

	admin := entity.User{
		Email: "admin@inkpress.dev",
		Name:  "Site Admin",
		Role:  entity.RoleAdmin,
	}
	authors := []entity.User{admin}
	for i := 0; i < seedAuthors; i++ {
		name := s.faker.Name()
		authors = append(authors, entity.User{
			Email: fmt.Sprintf("author%d@inkpress.dev", i+1),
			Name:  name,
			Role:  entity.RoleAuthor,
		})
	}

	for _, u := range authors {
		existing, err := repo.Users.GetByEmail(ctx, u.Email)
		if err == nil {
			users = append(users, existing)
			continue
		}

		id, err := s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			return nil, err
		}

		now := time.Now()
		u.ID = id
		u.Password = hashed
		u.Bio = s.faker.Sentence(12)
		u.AvatarURL = s.utils.DefaultAvatarURL(u.Name)
		u.CreatedAt = now
		u.UpdatedAt = now

		if err := repo.Users.CreateUser(ctx, u); err != nil {
			return nil, err
		}

		s.log.WithFields(logrus.Fields{
			"email": u.Email,
			"role":  u.Role,
		}).Info("Seeded user")
		users = append(users, u)
	}

	return users, nil
}

func (s *seeder) seedCategories(ctx context.Context) ([]string, error) {
	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(seedCategories))
	for _, c := range seedCategories {
		categorySlug := slug.Make(c.name)

		existing, err := client.Categories.GetCategoryBySlug(ctx, categorySlug)
		if err == nil {
			ids = append(ids, existing.ID)
			continue
		}

		id, err := s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			return nil, err
		}

		category := entity.Category{
			ID:          id,
			Name:        c.name,
			Slug:        categorySlug,
			Description: c.description,
			CreatedAt:   time.Now(),
		}
		if err := client.Categories.CreateCategory(ctx, category); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	s.log.Infof("Seeded %d categories", len(ids))
	return ids, nil
}

func (s *seeder) seedTags(ctx context.Context) ([]string, error) {
	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(seedTags))
	for _, name := range seedTags {
		tagSlug := slug.Make(name)

		existing, err := client.Tags.GetTagBySlug(ctx, tagSlug)
		if err == nil {
			ids = append(ids, existing.ID)
			continue
		}

		id, err := s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			return nil, err
		}

		tag := entity.Tag{
			ID:        id,
			Name:      name,
			Slug:      tagSlug,
			CreatedAt: time.Now(),
		}
		if err := client.Tags.CreateTag(ctx, tag); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	s.log.Infof("Seeded %d tags", len(ids))
	return ids, nil
}

func (s *seeder) seedPosts(ctx context.Context, users []entity.User, categoryIDs, tagIDs []string) ([]string, error) {
	postIDs := make([]string, 0, seedPosts)

	for i := 0; i < seedPosts; i++ {
		client, err := s.postsRepo.NewClient(true)
		if err != nil {
			return nil, err
		}

		title := strings.TrimSuffix(s.faker.Sentence(s.faker.Number(4, 8)), ".")
		postSlug, err := s.slugGen.Unique(ctx, title, func(ctx context.Context, candidate string) (bool, error) {
			return client.Posts.SlugExists(ctx, candidate, "")
		})
		if err != nil {
			_ = client.Rollback()
			return nil, err
		}

		id, err := s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			_ = client.Rollback()
			return nil, err
		}

		author := users[s.faker.Number(0, len(users)-1)]
		status := entity.PostStatusPublished
		if s.faker.Number(0, 4) == 0 {
			status = entity.PostStatusDraft
		}

		now := time.Now()
		post := entity.Post{
			ID:         id,
			AuthorID:   author.ID,
			Title:      title,
			Slug:       postSlug,
			Content:    s.faker.Paragraph(3, 5, 40, "\n\n"),
			Excerpt:    s.faker.Sentence(16),
			CategoryID: categoryIDs[s.faker.Number(0, len(categoryIDs)-1)],
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if status == entity.PostStatusPublished {
			publishedAt := now.Add(-time.Duration(s.faker.Number(1, 240)) * time.Hour)
			post.PublishedAt = &publishedAt
		}

		if err := client.Posts.CreatePost(ctx, post); err != nil {
			_ = client.Rollback()
			return nil, err
		}

		indexes := tagIndexes(len(tagIDs))
		s.faker.ShuffleInts(indexes)
		count := s.faker.Number(1, 3)
		if count > len(indexes) {
			count = len(indexes)
		}

		chosen := make([]string, 0, count)
		for _, idx := range indexes[:count] {
			chosen = append(chosen, tagIDs[idx])
		}
		if err := client.Tags.ReplacePostTags(ctx, post.ID, chosen); err != nil {
			_ = client.Rollback()
			return nil, err
		}

		if err := client.Commit(); err != nil {
			return nil, err
		}

		if status == entity.PostStatusPublished {
			postIDs = append(postIDs, post.ID)
		}
	}

	s.log.Infof("Seeded %d posts", seedPosts)
	return postIDs, nil
}

func (s *seeder) seedComments(ctx context.Context, users []entity.User, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}

	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return err
	}

	for i := 0; i < seedComments; i++ {
		id, err := s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			return err
		}

		now := time.Now()
		comment := entity.Comment{
			ID:        id,
			PostID:    postIDs[s.faker.Number(0, len(postIDs)-1)],
			UserID:    users[s.faker.Number(0, len(users)-1)].ID,
			Content:   s.faker.Sentence(s.faker.Number(8, 24)),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := client.Comments.CreateComment(ctx, comment); err != nil {
			return err
		}
	}

	s.log.Infof("Seeded %d comments", seedComments)
	return nil
}

func tagIndexes(n int) []int {
	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}
	return indexes
}
