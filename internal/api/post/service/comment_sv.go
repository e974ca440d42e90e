package postService

import (
	"context"
	"time"

	posts "inkpress/internal/api/post"
	"inkpress/internal/entity"
	contextPkg "inkpress/pkg/context"

	"github.com/sirupsen/logrus"
)

func (s *postsService) ListComments(ctx context.Context, postSlug string) ([]posts.CommentResponse, error) {
	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	post, err := client.Posts.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if post.Status != entity.PostStatusPublished {
		return nil, posts.ErrPostNotFound
	}

	comments, err := client.Comments.ListCommentsByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]posts.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, makeCommentResponse(comment))
	}
	return responses, nil
}

func (s *postsService) CreateComment(ctx context.Context, postSlug string, req posts.CreateCommentRequest, user entity.UserLoginData) (res posts.CommentResponse, err error) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.postsRepo.NewClient(true)
	if err != nil {
		return posts.CommentResponse{}, err
	}
	defer func() {
		if err != nil {
			if rbErr := client.Rollback(); rbErr != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      rbErr.Error(),
				}).Error("CreateComment rollback failed")
			}
		}
	}()

	post, err := client.Posts.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return posts.CommentResponse{}, err
	}
	if post.Status != entity.PostStatusPublished {
		err = posts.ErrPostNotFound
		return posts.CommentResponse{}, err
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return posts.CommentResponse{}, err
	}

	now := time.Now()
	comment := entity.Comment{
		ID:        id,
		PostID:    post.ID,
		UserID:    user.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = client.Comments.CreateComment(ctx, comment); err != nil {
		return posts.CommentResponse{}, err
	}

	// Reload inside the transaction to pick up the joined author columns.
	created, err := client.Comments.GetCommentByID(ctx, comment.ID)
	if err != nil {
		return posts.CommentResponse{}, err
	}

	if err = client.Commit(); err != nil {
		return posts.CommentResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"post_id":    post.ID,
		"comment_id": created.ID,
	}).Info("Comment created")

	// Authors commenting on their own posts do not get mailed about it.
	if post.Author != nil && post.Author.Email != "" && post.AuthorID != user.ID {
		authorEmail := post.Author.Email
		postTitle := post.Title
		commenterName := ""
		if created.Author != nil {
			commenterName = created.Author.Name
		}
		content := created.Content
		go func() {
			if err := s.mail.SendCommentNotification(authorEmail, postTitle, commenterName, content); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("Failed to send comment notification")
			}
		}()
	}

	return makeCommentResponse(created), nil
}

func (s *postsService) DeleteComment(ctx context.Context, commentID string, user entity.UserLoginData) error {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.postsRepo.NewClient(false)
	if err != nil {
		return err
	}

	comment, err := client.Comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}

	if user.Role != entity.RoleAdmin && comment.UserID != user.ID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"comment_id": commentID,
			"user_id":    user.ID,
		}).Warn("Rejected comment delete by non-owner")
		return posts.ErrCommentNotFound
	}

	if err := client.Comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"comment_id": commentID,
	}).Info("Comment deleted")

	return nil
}
