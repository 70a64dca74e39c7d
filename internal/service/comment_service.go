package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/messaging"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
	"github.com/google/uuid"
)

// CommentService accepts reviews from verified purchasers.
type CommentService struct {
	comments  repository.CommentRepository
	histories repository.HistoryRepository
	publisher messaging.Publisher
}

func NewCommentService(
	comments repository.CommentRepository,
	histories repository.HistoryRepository,
	publisher messaging.Publisher,
) *CommentService {
	return &CommentService{
		comments:  comments,
		histories: histories,
		publisher: publisher,
	}
}

// CreateCommentRequest is a review submission.
type CreateCommentRequest struct {
	BookID  string `json:"book_id"`
	Content string `json:"content"`
	Star    int    `json:"star"`
	Feeling string `json:"feeling"`
	Image   string `json:"image"`
}

// Create stores a review after checking the user's purchase history for the
// book. Users with no recorded purchase get entity.ErrPurchaseRequired.
func (s *CommentService) Create(ctx context.Context, req *CreateCommentRequest, user entity.ActingUser) (*entity.Comment, error) {
	if req.BookID == "" || req.Content == "" {
		return nil, fmt.Errorf("comment requires a book id and content")
	}
	if req.Star < 1 || req.Star > 5 {
		return nil, fmt.Errorf("star rating must be between 1 and 5")
	}

	purchased, err := s.histories.HasPurchased(ctx, user.ID, req.BookID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, entity.ErrPurchaseRequired
	}

	comment := &entity.Comment{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		BookID:    req.BookID,
		Content:   req.Content,
		Star:      req.Star,
		Feeling:   req.Feeling,
		Image:     req.Image,
		CreatedAt: time.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	event := entity.CommentCreated{
		CommentID: comment.ID,
		BookID:    comment.BookID,
		UserID:    comment.UserID,
		Star:      comment.Star,
		CreatedAt: comment.CreatedAt,
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicCommentsCreated, comment.BookID, event); err != nil {
		slog.Error("Failed to publish CommentCreated", "comment_id", comment.ID, "err", err)
	}
	return comment, nil
}

// FindByBook returns a book's reviews, newest first.
func (s *CommentService) FindByBook(ctx context.Context, bookID string) ([]entity.Comment, error) {
	return s.comments.FindByBook(ctx, bookID)
}

// FindAll returns a page of all reviews for the admin view.
func (s *CommentService) FindAll(ctx context.Context, offset, limit int) ([]entity.Comment, int, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.comments.FindAll(ctx, offset, limit)
}

// Delete removes a review.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	return s.comments.Delete(ctx, id)
}
