package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"lingotrail-backend/internal/model"
	"lingotrail-backend/internal/repository"
)

// AuthService interface
type AuthService interface {
	Register(user *model.User) error
	Login(email, password string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
}

// NewAuthService initializes authentication service
func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(user *model.User) error {
	existingUser, err := s.userRepo.GetUserByEmail(user.Email)
	if err == nil && existingUser != nil {
		return errors.New("email already in use")
	}

	if user.Password == "" {
		return errors.New("password cannot be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}
	user.Password = string(hashed)

	if err := s.userRepo.CreateUser(user); err != nil {
		return errors.New("failed to store user in database")
	}
	return nil
}

// Login authenticates a user by email and password
func (s *authService) Login(email, password string) (*model.User, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	// Remove password before returning user data
	user.Password = ""
	return user, nil
}
