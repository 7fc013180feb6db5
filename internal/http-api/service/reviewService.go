package service

import (
	"context"
	"errors"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/policy"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

type ReviewService interface {
	GetTitleReviews(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
	GetReview(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	CreateReview(ctx context.Context, actor *policy.Actor, titleID int64, req *dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	UpdateReview(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, req *dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	DeleteReview(ctx context.Context, actor *policy.Actor, titleID, reviewID int64) error
}

// TitleGetter is the part of the title repository needed to anchor nested
// review and comment routes.
type TitleGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Title, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  TitleGetter
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo TitleGetter) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

func (s *reviewService) GetTitleReviews(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByTitle(titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	resp := dto.NewPaginatedReviewResponse(responses, page, pageSize, total)
	return &resp, nil
}

func (s *reviewService) GetReview(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.getOwned(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// CreateReview stamps author and title server-side; whatever the client sent
// for those fields never reaches this point. The one-review-per-author rule
// is pre-checked here and enforced again by the unique index on insert.
func (s *reviewService) CreateReview(ctx context.Context, actor *policy.Actor, titleID int64, req *dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if _, err := s.reviewRepo.GetByUserAndTitle(actor.ID, titleID); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		TitleID: titleID,
		UserID:  actor.ID,
		Text:    req.Text,
		Score:   req.Score,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if repository.IsUniqueViolation(err) {
			// a concurrent request won the race, same outcome as the pre-check
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(review.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// UpdateReview applies a partial update. Author and title are immutable;
// only the author, a moderator or an admin may touch the review.
func (s *reviewService) UpdateReview(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, req *dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.getOwned(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if !policy.CanModifyContent(actor, review.UserID) {
		return nil, ErrPermissionDenied
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	review, err = s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// DeleteReview removes the review and its comments.
func (s *reviewService) DeleteReview(ctx context.Context, actor *policy.Actor, titleID, reviewID int64) error {
	review, err := s.getOwned(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if !policy.CanModifyContent(actor, review.UserID) {
		return ErrPermissionDenied
	}

	return s.reviewRepo.Delete(reviewID)
}

// getOwned resolves a review and checks it belongs to the title in the URL;
// a mismatched pair reads as not found.
func (s *reviewService) getOwned(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, ErrReviewNotFound
	}
	return review, nil
}
