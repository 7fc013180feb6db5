package service

import (
	"context"
	"errors"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/validation"

	"gorm.io/gorm"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, req *dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

// TitleStore is the slice of the title repository this service depends on.
type TitleStore interface {
	GetAll(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title, replaceGenres bool) error
	Delete(ctx context.Context, id int64) error
}

// GenreResolver resolves genre slugs for the title write shape.
type GenreResolver interface {
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
}

// CategoryResolver resolves the category slug for the title write shape.
type CategoryResolver interface {
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type titleService struct {
	titleRepo    TitleStore
	genreRepo    GenreResolver
	categoryRepo CategoryResolver
	reviewRepo   repository.ReviewRepository
}

func NewTitleService(
	titleRepo TitleStore,
	genreRepo GenreResolver,
	categoryRepo CategoryResolver,
	reviewRepo repository.ReviewRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		genreRepo:    genreRepo,
		categoryRepo: categoryRepo,
		reviewRepo:   reviewRepo,
	}
}

// List returns the read shape with the rating recomputed from reviews on
// every call; the rating is never stored.
func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error) {
	titles, total, err := s.titleRepo.GetAll(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(titles))
	for i := range titles {
		ids = append(ids, titles[i].ID)
	}
	averages, err := s.reviewRepo.AverageScores(ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		responses = append(responses, *dto.FromModelToTitleResponse(&titles[i], averages[titles[i].ID]))
	}
	resp := dto.NewPaginatedTitleResponse(responses, page, pageSize, total)
	return &resp, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	averages, err := s.reviewRepo.AverageScores([]int64{id})
	if err != nil {
		return nil, err
	}
	return dto.FromModelToTitleResponse(title, averages[id]), nil
}

func (s *titleService) Create(ctx context.Context, req *dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if err := validation.Year(req.Year); err != nil {
		return nil, invalidField("year", err)
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}

	if err := s.resolveRefs(ctx, title, req.Genre, req.Category); err != nil {
		return nil, err
	}

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	// freshly created, no reviews yet
	return dto.FromModelToTitleResponse(title, 0), nil
}

func (s *titleService) Update(ctx context.Context, id int64, req *dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := validation.Year(*req.Year); err != nil {
			return nil, invalidField("year", err)
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}

	replaceGenres := false
	if req.Genre != nil {
		genres, err := s.lookupGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
		replaceGenres = true
	}
	if req.Category != nil {
		category, err := s.categoryRepo.GetBySlug(ctx, *req.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, invalidField("category", ErrCategoryNotFound)
			}
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	if err := s.titleRepo.Update(ctx, title, replaceGenres); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *titleService) resolveRefs(ctx context.Context, title *models.Title, genreSlugs []string, categorySlug *string) error {
	if len(genreSlugs) > 0 {
		genres, err := s.lookupGenres(ctx, genreSlugs)
		if err != nil {
			return err
		}
		title.Genres = genres
	}
	if categorySlug != nil {
		category, err := s.categoryRepo.GetBySlug(ctx, *categorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidField("category", ErrCategoryNotFound)
			}
			return err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}
	return nil
}

func (s *titleService) lookupGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	genres, err := s.genreRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(slugs) {
		return nil, invalidField("genre", ErrGenreNotFound)
	}
	return genres, nil
}
