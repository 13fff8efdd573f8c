package user_service

import (
	"time"

	"clubdesk/internal/models"
	"clubdesk/internal/models/config"
	"clubdesk/internal/repository"
	"clubdesk/internal/service"
	"clubdesk/internal/store"
	"clubdesk/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type userService struct {
	userRepo repository.UserRepository
	store    *store.Store
	cfg      *config.Config
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewUserService(
	userRepo repository.UserRepository,
	st *store.Store,
	cfg *config.Config,
	logger *zap.Logger,
) service.UserService {
	return &userService{
		userRepo: userRepo,
		store:    st,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Login checks credentials against the local store first, falling back
// to the remote users table when the account is not cached yet.
func (s *userService) Login(username, password string) (string, *models.AppUser, error) {
	user := s.store.UserByUsername(username)
	if user == nil {
		remote, err := s.userRepo.GetByUsername(username)
		if err != nil {
			s.logger.Warn("remote user lookup failed",
				zap.String("username", username), zap.Error(err))
		}
		if remote == nil {
			return "", nil, service.ErrInvalidCredentials
		}
		user = remote
		s.cacheUser(user)
	}

	if !utils.VerifyPassword(user.PasswordHash, password) {
		return "", nil, service.ErrInvalidCredentials
	}

	token, err := utils.NewAccessToken(s.cfg.Auth.JWTSecret, user, s.cfg.Auth.TokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) FromToken(token string) (*models.AppUser, error) {
	return utils.ParseAccessToken(s.cfg.Auth.JWTSecret, token)
}

func (s *userService) Users() []models.AppUser {
	return s.store.Users()
}

func (s *userService) CreateUser(username, password, role string, category *string) (*models.AppUser, error) {
	hash, err := utils.HashPassword(password, s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.AppUser{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Category:     category,
		CreatedAt:    s.now(),
	}

	s.cacheUser(user)
	if err := s.userRepo.Upsert(user); err != nil {
		s.logger.Warn("remote user insert failed",
			zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

func (s *userService) cacheUser(user *models.AppUser) {
	s.store.Update(func(state *models.AppState) {
		for i := range state.Users {
			if state.Users[i].ID == user.ID {
				state.Users[i] = *user
				return
			}
		}
		state.Users = append(state.Users, *user)
	})
}
