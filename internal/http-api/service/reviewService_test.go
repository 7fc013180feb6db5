package service

import (
	"context"
	"testing"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockReviewRepository mocks the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(review *models.Review) error {
	args := m.Called(review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(review *models.Review) error {
	args := m.Called(review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(reviewID int64) error {
	args := m.Called(reviewID)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(reviewID int64) (*models.Review, error) {
	args := m.Called(reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByUserAndTitle(userID string, titleID int64) (*models.Review, error) {
	args := m.Called(userID, titleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) AverageScores(titleIDs []int64) (map[int64]float64, error) {
	args := m.Called(titleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]float64), args.Error(1)
}

// MockTitleGetter mocks the TitleGetter interface
type MockTitleGetter struct {
	mock.Mock
}

func (m *MockTitleGetter) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func reader(id string) *policy.Actor {
	return &policy.Actor{ID: id, Username: "reader-" + id, Role: models.RoleUser}
}

func TestCreateReview_Success(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitles := new(MockTitleGetter)
	svc := NewReviewService(mockReviewRepo, mockTitles)

	mockTitles.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune"}, nil)
	mockReviewRepo.On("GetByUserAndTitle", "author-id", int64(1)).Return(nil, gorm.ErrRecordNotFound)
	mockReviewRepo.On("Create", mock.AnythingOfType("*models.Review")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Review).ID = 7
	}).Return(nil)
	mockReviewRepo.On("GetByID", int64(7)).Return(&models.Review{
		ID:      7,
		TitleID: 1,
		UserID:  "author-id",
		Text:    "superb",
		Score:   9,
		User:    models.User{Username: "bookworm"},
	}, nil)

	actor := &policy.Actor{ID: "author-id", Username: "bookworm", Role: models.RoleUser}
	resp, err := svc.CreateReview(context.Background(), actor, 1, &dto.CreateReviewDTO{Text: "superb", Score: 9})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "bookworm", resp.Author)
	assert.Equal(t, 9, resp.Score)
	mockReviewRepo.AssertExpectations(t)
}

func TestCreateReview_SecondReviewRejected(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitles := new(MockTitleGetter)
	svc := NewReviewService(mockReviewRepo, mockTitles)

	mockTitles.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("GetByUserAndTitle", "author-id", int64(1)).Return(&models.Review{ID: 3, TitleID: 1, UserID: "author-id"}, nil)

	resp, err := svc.CreateReview(context.Background(), reader("author-id"), 1, &dto.CreateReviewDTO{Text: "again", Score: 5})

	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Nil(t, resp)
	mockReviewRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateReview_RaceLostOnInsert(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitles := new(MockTitleGetter)
	svc := NewReviewService(mockReviewRepo, mockTitles)

	mockTitles.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("GetByUserAndTitle", "author-id", int64(1)).Return(nil, gorm.ErrRecordNotFound)
	mockReviewRepo.On("Create", mock.AnythingOfType("*models.Review")).Return(uniqueViolation())

	resp, err := svc.CreateReview(context.Background(), reader("author-id"), 1, &dto.CreateReviewDTO{Text: "race", Score: 5})

	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Nil(t, resp)
}

func TestCreateReview_TitleMissing(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitles := new(MockTitleGetter)
	svc := NewReviewService(mockReviewRepo, mockTitles)

	mockTitles.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.CreateReview(context.Background(), reader("author-id"), 404, &dto.CreateReviewDTO{Text: "lost", Score: 5})

	assert.ErrorIs(t, err, ErrTitleNotFound)
	assert.Nil(t, resp)
}

func TestGetReview_WrongTitleReadsAsNotFound(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitles := new(MockTitleGetter)
	svc := NewReviewService(mockReviewRepo, mockTitles)

	mockReviewRepo.On("GetByID", int64(7)).Return(&models.Review{ID: 7, TitleID: 2, UserID: "author-id"}, nil)

	resp, err := svc.GetReview(context.Background(), 1, 7)

	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.Nil(t, resp)
}

func TestUpdateReview_ByAuthor(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitles := new(MockTitleGetter)
	svc := NewReviewService(mockReviewRepo, mockTitles)

	stored := &models.Review{ID: 7, TitleID: 1, UserID: "author-id", Text: "ok", Score: 5, User: models.User{Username: "bookworm"}}
	mockReviewRepo.On("GetByID", int64(7)).Return(stored, nil)
	mockReviewRepo.On("Update", mock.AnythingOfType("*models.Review")).Return(nil)

	newText := "rereading changed my mind"
	newScore := 8
	resp, err := svc.UpdateReview(context.Background(), reader("author-id"), 1, 7, &dto.UpdateReviewDTO{Text: &newText, Score: &newScore})

	assert.NoError(t, err)
	assert.Equal(t, "rereading changed my mind", resp.Text)
	assert.Equal(t, 8, resp.Score)
}

func TestUpdateReview_ByStrangerDenied(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitles := new(MockTitleGetter)
	svc := NewReviewService(mockReviewRepo, mockTitles)

	mockReviewRepo.On("GetByID", int64(7)).Return(&models.Review{ID: 7, TitleID: 1, UserID: "author-id"}, nil)

	newText := "vandalism"
	resp, err := svc.UpdateReview(context.Background(), reader("someone-else"), 1, 7, &dto.UpdateReviewDTO{Text: &newText})

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Nil(t, resp)
	mockReviewRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestDeleteReview_ModeratorAndAdminAllowed(t *testing.T) {
	for _, role := range []string{models.RoleModerator, models.RoleAdmin} {
		mockReviewRepo := new(MockReviewRepository)
		mockTitles := new(MockTitleGetter)
		svc := NewReviewService(mockReviewRepo, mockTitles)

		mockReviewRepo.On("GetByID", int64(7)).Return(&models.Review{ID: 7, TitleID: 1, UserID: "author-id"}, nil)
		mockReviewRepo.On("Delete", int64(7)).Return(nil)

		actor := &policy.Actor{ID: "staff-id", Username: "staff", Role: role}
		err := svc.DeleteReview(context.Background(), actor, 1, 7)

		assert.NoError(t, err, role)
		mockReviewRepo.AssertExpectations(t)
	}
}

func TestDeleteReview_AnonymousDenied(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitles := new(MockTitleGetter)
	svc := NewReviewService(mockReviewRepo, mockTitles)

	mockReviewRepo.On("GetByID", int64(7)).Return(&models.Review{ID: 7, TitleID: 1, UserID: "author-id"}, nil)

	err := svc.DeleteReview(context.Background(), nil, 1, 7)

	assert.ErrorIs(t, err, ErrPermissionDenied)
	mockReviewRepo.AssertNotCalled(t, "Delete", mock.Anything)
}
