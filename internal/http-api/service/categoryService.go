package service

import (
	"context"
	"errors"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

type CategoryService struct {
	categoryRepo *repository.CategoryRepo
}

func NewCategoryService(categoryRepo *repository.CategoryRepo) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) List(ctx context.Context, search string) ([]dto.CategoryResponse, error) {
	categories, err := s.categoryRepo.GetAll(ctx, search)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, *dto.FromModelToCategoryResponse(&categories[i]))
	}
	return responses, nil
}

func (s *CategoryService) Create(ctx context.Context, req *dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	if _, err := s.categoryRepo.GetBySlug(ctx, req.Slug); err == nil {
		return nil, ErrSlugInUse
	}

	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSlugInUse
		}
		return nil, err
	}
	return dto.FromModelToCategoryResponse(category), nil
}

// Delete removes the category; referencing titles keep running with a null
// category. This differs from title deletion on purpose: reviews document
// the title, the category is only a label.
func (s *CategoryService) Delete(ctx context.Context, slug string) error {
	if err := s.categoryRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
