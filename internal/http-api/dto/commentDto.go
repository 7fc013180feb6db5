package dto

import (
	"time"

	"reviewhub/internal/http-api/models"
)

// CreateCommentDTO for posting a comment on a review. Author and review are
// stamped server-side.
type CreateCommentDTO struct {
	Text string `json:"text" binding:"required"`
}

// UpdateCommentDTO for PATCH
type UpdateCommentDTO struct {
	Text *string `json:"text,omitempty"`
}

// CommentResponse for returning comment information
type CommentResponse struct {
	ID       int64     `json:"id"`
	ReviewID int64     `json:"review_id"`
	Text     string    `json:"text"`
	Author   string    `json:"author"`
	PubDate  time.Time `json:"pub_date"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(comment *models.Comment) *CommentResponse {
	return &CommentResponse{
		ID:       comment.ID,
		ReviewID: comment.ReviewID,
		Text:     comment.Text,
		Author:   comment.User.Username,
		PubDate:  comment.CreatedAt,
	}
}

// PaginatedCommentResponse for returning paginated comments
type PaginatedCommentResponse struct {
	Data       []CommentResponse `json:"data"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}

func NewPaginatedCommentResponse(data []CommentResponse, page, pageSize int, total int64) PaginatedCommentResponse {
	return PaginatedCommentResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
