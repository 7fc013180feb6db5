package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockTitleStore mocks the TitleStore interface
type MockTitleStore struct {
	mock.Mock
}

func (m *MockTitleStore) GetAll(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleStore) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleStore) Create(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleStore) Update(ctx context.Context, t *models.Title, replaceGenres bool) error {
	args := m.Called(ctx, t, replaceGenres)
	return args.Error(0)
}

func (m *MockTitleStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGenreResolver mocks the GenreResolver interface
type MockGenreResolver struct {
	mock.Mock
}

func (m *MockGenreResolver) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	args := m.Called(ctx, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Genre), args.Error(1)
}

// MockCategoryResolver mocks the CategoryResolver interface
type MockCategoryResolver struct {
	mock.Mock
}

func (m *MockCategoryResolver) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func newTestTitleService() (*MockTitleStore, *MockGenreResolver, *MockCategoryResolver, *MockReviewRepository, TitleService) {
	titles := new(MockTitleStore)
	genres := new(MockGenreResolver)
	categories := new(MockCategoryResolver)
	reviews := new(MockReviewRepository)
	return titles, genres, categories, reviews, NewTitleService(titles, genres, categories, reviews)
}

func TestTitleList_RatingIsAverageOfScores(t *testing.T) {
	titles, _, _, reviews, svc := newTestTitleService()

	stored := []models.Title{
		{ID: 1, Name: "Rated", Year: 1999},
		{ID: 2, Name: "Unrated", Year: 2005},
	}
	titles.On("GetAll", mock.Anything, repository.TitleFilter{}, 1, 20).Return(stored, int64(2), nil)
	// scores 8 and 10 average to 9; title 2 has no reviews
	reviews.On("AverageScores", []int64{1, 2}).Return(map[int64]float64{1: 9}, nil)

	resp, err := svc.List(context.Background(), repository.TitleFilter{}, 1, 20)

	assert.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 9.0, resp.Data[0].Rating)
	assert.Equal(t, 0.0, resp.Data[1].Rating)
	assert.Equal(t, int64(2), resp.Total)
}

func TestTitleGet_NoReviewsMeansZeroRating(t *testing.T) {
	titles, _, _, reviews, svc := newTestTitleService()

	titles.On("GetByID", mock.Anything, int64(5)).Return(&models.Title{ID: 5, Name: "Quiet", Year: 2010}, nil)
	reviews.On("AverageScores", []int64{5}).Return(map[int64]float64{}, nil)

	resp, err := svc.Get(context.Background(), 5)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, resp.Rating)
}

func TestTitleGet_NotFound(t *testing.T) {
	titles, _, _, _, svc := newTestTitleService()

	titles.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.Get(context.Background(), 404)

	assert.ErrorIs(t, err, ErrTitleNotFound)
	assert.Nil(t, resp)
}

func TestTitleCreate_ResolvesSlugs(t *testing.T) {
	titles, genres, categories, _, svc := newTestTitleService()

	genres.On("GetBySlugs", mock.Anything, []string{"drama", "scifi"}).Return([]models.Genre{
		{ID: 1, Name: "Drama", Slug: "drama"},
		{ID: 2, Name: "Science Fiction", Slug: "scifi"},
	}, nil)
	categories.On("GetBySlug", mock.Anything, "movie").Return(&models.Category{ID: 3, Name: "Movie", Slug: "movie"}, nil)
	titles.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Title).ID = 11
	}).Return(nil)

	category := "movie"
	resp, err := svc.Create(context.Background(), &dto.CreateTitleDTO{
		Name:     "Gattaca",
		Year:     1997,
		Genre:    []string{"drama", "scifi"},
		Category: &category,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, 0.0, resp.Rating)
	assert.Len(t, resp.Genre, 2)
	assert.NotNil(t, resp.Category)
	assert.Equal(t, "movie", resp.Category.Slug)
}

func TestTitleCreate_FutureYearRejected(t *testing.T) {
	titles, _, _, _, svc := newTestTitleService()

	resp, err := svc.Create(context.Background(), &dto.CreateTitleDTO{
		Name: "Too Soon",
		Year: time.Now().Year() + 1,
	})

	assert.Error(t, err)
	assert.Nil(t, resp)

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "year", vErr.Field)
	titles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTitleCreate_UnknownGenreSlug(t *testing.T) {
	_, genres, _, _, svc := newTestTitleService()

	genres.On("GetBySlugs", mock.Anything, []string{"drama", "nope"}).Return([]models.Genre{
		{ID: 1, Name: "Drama", Slug: "drama"},
	}, nil)

	resp, err := svc.Create(context.Background(), &dto.CreateTitleDTO{
		Name:  "Half Real",
		Year:  2001,
		Genre: []string{"drama", "nope"},
	})

	assert.ErrorIs(t, err, ErrGenreNotFound)
	assert.Nil(t, resp)
}

func TestTitleCreate_UnknownCategorySlug(t *testing.T) {
	_, _, categories, _, svc := newTestTitleService()

	categories.On("GetBySlug", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	category := "nope"
	resp, err := svc.Create(context.Background(), &dto.CreateTitleDTO{
		Name:     "Orphaned",
		Year:     2001,
		Category: &category,
	})

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, resp)
}

func TestTitleUpdate_PartialKeepsGenres(t *testing.T) {
	titles, _, _, reviews, svc := newTestTitleService()

	stored := &models.Title{ID: 1, Name: "Old Name", Year: 1999, Genres: []models.Genre{{ID: 1, Slug: "drama"}}}
	titles.On("GetByID", mock.Anything, int64(1)).Return(stored, nil)
	titles.On("Update", mock.Anything, mock.AnythingOfType("*models.Title"), false).Return(nil)
	reviews.On("AverageScores", []int64{1}).Return(map[int64]float64{1: 7.5}, nil)

	newName := "New Name"
	resp, err := svc.Update(context.Background(), 1, &dto.UpdateTitleDTO{Name: &newName})

	assert.NoError(t, err)
	assert.Equal(t, "New Name", resp.Name)
	assert.Equal(t, 7.5, resp.Rating)
	assert.Len(t, resp.Genre, 1)
	titles.AssertExpectations(t)
}

func TestTitleUpdate_ReplacesGenresWhenSent(t *testing.T) {
	titles, genres, _, reviews, svc := newTestTitleService()

	stored := &models.Title{ID: 1, Name: "Keep", Year: 1999, Genres: []models.Genre{{ID: 1, Slug: "drama"}}}
	titles.On("GetByID", mock.Anything, int64(1)).Return(stored, nil)
	genres.On("GetBySlugs", mock.Anything, []string{"scifi"}).Return([]models.Genre{{ID: 2, Slug: "scifi"}}, nil)
	titles.On("Update", mock.Anything, mock.AnythingOfType("*models.Title"), true).Return(nil)
	reviews.On("AverageScores", []int64{1}).Return(map[int64]float64{}, nil)

	newGenres := []string{"scifi"}
	resp, err := svc.Update(context.Background(), 1, &dto.UpdateTitleDTO{Genre: &newGenres})

	assert.NoError(t, err)
	assert.Len(t, resp.Genre, 1)
	assert.Equal(t, "scifi", resp.Genre[0].Slug)
	titles.AssertExpectations(t)
}

func TestTitleDelete_NotFound(t *testing.T) {
	titles, _, _, _, svc := newTestTitleService()

	titles.On("Delete", mock.Anything, int64(404)).Return(gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), 404)

	assert.ErrorIs(t, err, ErrTitleNotFound)
}
