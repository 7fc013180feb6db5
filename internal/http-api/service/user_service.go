package service

import (
	"errors"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/validation"

	"gorm.io/gorm"
)

type UserService interface {
	List(search string, page, pageSize int) (*dto.PaginatedUserResponse, error)
	Create(req *dto.CreateUserDTO) (*dto.UserResponse, error)
	GetByUsername(username string) (*dto.UserResponse, error)
	Update(username string, req *dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error)
	Delete(username string) error
	GetByID(id string) (*dto.UserResponse, error)
	UpdateByID(id string, req *dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(search string, page, pageSize int) (*dto.PaginatedUserResponse, error) {
	users, total, err := s.userRepo.List(search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.FromModelToUserResponse(&users[i]))
	}
	resp := dto.NewPaginatedUserResponse(responses, page, pageSize, total)
	return &resp, nil
}

// Create is the admin path: the account starts confirmed-less (no code) and
// may carry any role.
func (s *userService) Create(req *dto.CreateUserDTO) (*dto.UserResponse, error) {
	if err := validation.Username(req.Username); err != nil {
		return nil, invalidField("username", err)
	}

	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, ErrNameInUse
	}
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, ErrEmailInUse
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}

	if err := s.userRepo.Create(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) GetByUsername(username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) GetByID(id string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Update(username string, req *dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.apply(user, req, allowRoleChange)
}

func (s *userService) UpdateByID(id string, req *dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.apply(user, req, allowRoleChange)
}

// apply merges a partial update onto the stored account. The role field is
// written only when the caller is allowed to change roles; the /me path
// always passes allowRoleChange=false so role stays read-only there.
func (s *userService) apply(user *models.User, req *dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error) {
	if req.Username != nil && *req.Username != user.Username {
		if err := validation.Username(*req.Username); err != nil {
			return nil, invalidField("username", err)
		}
		if _, err := s.userRepo.FindByUsername(*req.Username); err == nil {
			return nil, ErrNameInUse
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if other, err := s.userRepo.FindByEmail(*req.Email); err == nil && other.ID != user.ID {
			return nil, ErrEmailInUse
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil && allowRoleChange {
		user.Role = *req.Role
	}

	if err := s.userRepo.Update(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	return dto.FromModelToUserResponse(user), nil
}

// Delete removes an account with its authored reviews and comments.
func (s *userService) Delete(username string) error {
	if err := s.userRepo.Delete(username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
