package service

import (
	"context"
	"errors"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

type GenreService struct {
	genreRepo *repository.GenreRepo
}

func NewGenreService(genreRepo *repository.GenreRepo) *GenreService {
	return &GenreService{genreRepo: genreRepo}
}

func (s *GenreService) List(ctx context.Context, search string) ([]dto.GenreResponse, error) {
	genres, err := s.genreRepo.GetAll(ctx, search)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GenreResponse, 0, len(genres))
	for i := range genres {
		responses = append(responses, *dto.FromModelToGenreResponse(&genres[i]))
	}
	return responses, nil
}

func (s *GenreService) Create(ctx context.Context, req *dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	if _, err := s.genreRepo.GetBySlug(ctx, req.Slug); err == nil {
		return nil, ErrSlugInUse
	}

	genre := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSlugInUse
		}
		return nil, err
	}
	return dto.FromModelToGenreResponse(genre), nil
}

// Delete detaches the genre from all titles and removes it. Titles survive.
func (s *GenreService) Delete(ctx context.Context, slug string) error {
	if err := s.genreRepo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return err
	}
	return nil
}
