package service

import (
	"context"
	"errors"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/policy"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/validation"

	"gorm.io/gorm"
)

type CommentService interface {
	GetReviewComments(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error)
	GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	CreateComment(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, req *dto.CreateCommentDTO) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64, req *dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

func (s *commentService) GetReviewComments(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error) {
	if err := s.resolveReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.GetByReview(reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i]))
	}
	resp := dto.NewPaginatedCommentResponse(responses, page, pageSize, total)
	return &resp, nil
}

func (s *commentService) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.getOwned(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

// CreateComment stamps author and review server-side.
func (s *commentService) CreateComment(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, req *dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if err := validation.CommentText(req.Text); err != nil {
		return nil, invalidField("text", err)
	}

	if err := s.resolveReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		UserID:   actor.ID,
		Text:     req.Text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) UpdateComment(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64, req *dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	comment, err := s.getOwned(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if !policy.CanModifyContent(actor, comment.UserID) {
		return nil, ErrPermissionDenied
	}

	if req.Text != nil {
		if err := validation.CommentText(*req.Text); err != nil {
			return nil, invalidField("text", err)
		}
		comment.Text = *req.Text
	}

	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	comment, err = s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.getOwned(titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if !policy.CanModifyContent(actor, comment.UserID) {
		return ErrPermissionDenied
	}

	return s.commentRepo.Delete(commentID)
}

// resolveReview checks the title/review pair from the URL actually exists.
func (s *commentService) resolveReview(titleID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	if review.TitleID != titleID {
		return ErrReviewNotFound
	}
	return nil
}

func (s *commentService) getOwned(titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := s.resolveReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.ReviewID != reviewID {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
