package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"

	"agridash-backend/internal/auth"
	"agridash-backend/internal/models"
)

// UserStore is the persistence contract for accounts.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthStateFunc receives the user on login and nil on logout.
type AuthStateFunc func(u *models.User)

// UserService handles signup, login and session state. Credentials failures
// are deliberately indistinct: a bad email and a bad password produce the
// same error.
type UserService struct {
	Repo UserStore
	JWT  *auth.JWTManager

	mu        sync.Mutex
	observers []AuthStateFunc
}

var ErrInvalidCredentials = errors.New("invalid email or password")

func NewUserService(repo UserStore, jwt *auth.JWTManager) *UserService {
	return &UserService{Repo: repo, JWT: jwt}
}

func (s *UserService) Register(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if req.Name == "" {
		return nil, &MissingFieldError{Field: "name"}
	}
	if req.Email == "" {
		return nil, &MissingFieldError{Field: "email"}
	}
	if len(req.Password) < 6 {
		return nil, &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}

	existing, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ValidationError{Field: "email", Reason: "already registered"}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: req.Name, Email: req.Email, PasswordHash: hash, IsActive: true}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" {
		return nil, &MissingFieldError{Field: "email"}
	}
	if req.Password == "" {
		return nil, &MissingFieldError{Field: "password"}
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.notifyObservers(user)
	return resp, nil
}

// Logout is stateless server-side (tokens expire on their own); observers
// still get the nil transition so in-process listeners can reset.
func (s *UserService) Logout(userID int64) {
	log.Printf("[Auth] user %d logged out", userID)
	s.notifyObservers(nil)
}

func (s *UserService) CurrentUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", ID: id}
	}
	return user, nil
}

// ObserveAuthState registers an in-process listener for login and logout
// transitions.
func (s *UserService) ObserveAuthState(fn AuthStateFunc) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *UserService) notifyObservers(u *models.User) {
	s.mu.Lock()
	observers := make([]AuthStateFunc, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(u)
	}
}

func (s *UserService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.JWT.Generate(strconv.FormatInt(user.ID, 10), user.Email)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
