// Package auth implements the demo phone/OTP registration and login flow.
// The verification code is a fixed stand-in for a real one-time-code channel
// and must not be treated as a security boundary.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"clothfit/internal/kvstore"
	"clothfit/internal/models"
)

var (
	ErrFieldsRequired   = errors.New("auth: all fields are required")
	ErrInvalidPhone     = errors.New("auth: phone must be a 10-digit number")
	ErrPasswordTooShort = errors.New("auth: password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("auth: passwords do not match")
	ErrAccountExists    = errors.New("auth: account already exists with this phone or email")
	ErrAccountNotFound  = errors.New("auth: account not found")
	ErrInvalidOTP       = errors.New("auth: invalid verification code")
	ErrNoPendingVerify  = errors.New("auth: no verification in progress")
	ErrNotLoggedIn      = errors.New("auth: not logged in")
)

const usersKey = "users"

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// RegistrationInput is the register form payload.
type RegistrationInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Service runs the auth flows for all sessions. Pending OTP verifications
// are session-local and in-memory only; users and the logged-in snapshot are
// persisted through the key-value store.
type Service struct {
	store     kvstore.Store
	jwtSecret string
	accessTTL time.Duration
	demoOTP   string

	mu           sync.Mutex
	pendingReg   map[string]RegistrationInput
	pendingLogin map[string]string
}

func NewService(store kvstore.Store, jwtSecret string, accessTTL time.Duration, demoOTP string) *Service {
	return &Service{
		store:        store,
		jwtSecret:    jwtSecret,
		accessTTL:    accessTTL,
		demoOTP:      demoOTP,
		pendingReg:   make(map[string]RegistrationInput),
		pendingLogin: make(map[string]string),
	}
}

func currentUserKey(sessionID string) string {
	return "currentUser:" + sessionID
}

func (s *Service) loadUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.store.Get(ctx, usersKey, &users); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

// StartRegistration validates the form and holds it until the verification
// code is confirmed. Nothing is persisted yet.
func (s *Service) StartRegistration(ctx context.Context, sessionID string, input RegistrationInput) error {
	if input.Name == "" || input.Email == "" || input.Phone == "" || input.Password == "" || input.ConfirmPassword == "" {
		return ErrFieldsRequired
	}
	if !phonePattern.MatchString(input.Phone) {
		return ErrInvalidPhone
	}
	if len(input.Password) < 6 {
		return ErrPasswordTooShort
	}
	if input.Password != input.ConfirmPassword {
		return ErrPasswordMismatch
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Phone == input.Phone || u.Email == input.Email {
			return ErrAccountExists
		}
	}

	s.mu.Lock()
	s.pendingReg[sessionID] = input
	s.mu.Unlock()
	return nil
}

// VerifyRegistration checks the code, creates the account with a bcrypt
// password hash, persists it, and logs the new user in.
func (s *Service) VerifyRegistration(ctx context.Context, sessionID, otp string) (models.CurrentUser, string, error) {
	s.mu.Lock()
	input, ok := s.pendingReg[sessionID]
	s.mu.Unlock()
	if !ok {
		return models.CurrentUser{}, "", ErrNoPendingVerify
	}
	if otp != s.demoOTP {
		return models.CurrentUser{}, "", ErrInvalidOTP
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.CurrentUser{}, "", fmt.Errorf("hash password: %w", err)
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return models.CurrentUser{}, "", err
	}
	for _, u := range users {
		if u.Phone == input.Phone || u.Email == input.Email {
			return models.CurrentUser{}, "", ErrAccountExists
		}
	}

	user := models.User{
		Phone:        input.Phone,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	users = append(users, user)
	if err := s.store.Set(ctx, usersKey, users); err != nil {
		return models.CurrentUser{}, "", fmt.Errorf("persist users: %w", err)
	}

	s.mu.Lock()
	delete(s.pendingReg, sessionID)
	s.mu.Unlock()

	return s.login(ctx, sessionID, user)
}

// StartLogin checks the phone number belongs to a registered account and
// holds the attempt until the verification code is confirmed.
func (s *Service) StartLogin(ctx context.Context, sessionID, phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, u := range users {
		if u.Phone == phone {
			found = true
			break
		}
	}
	if !found {
		return ErrAccountNotFound
	}

	s.mu.Lock()
	s.pendingLogin[sessionID] = phone
	s.mu.Unlock()
	return nil
}

// VerifyLogin checks the code and logs the user in.
func (s *Service) VerifyLogin(ctx context.Context, sessionID, otp string) (models.CurrentUser, string, error) {
	s.mu.Lock()
	phone, ok := s.pendingLogin[sessionID]
	s.mu.Unlock()
	if !ok {
		return models.CurrentUser{}, "", ErrNoPendingVerify
	}
	if otp != s.demoOTP {
		return models.CurrentUser{}, "", ErrInvalidOTP
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return models.CurrentUser{}, "", err
	}
	for _, u := range users {
		if u.Phone == phone {
			s.mu.Lock()
			delete(s.pendingLogin, sessionID)
			s.mu.Unlock()
			return s.login(ctx, sessionID, u)
		}
	}
	return models.CurrentUser{}, "", ErrAccountNotFound
}

func (s *Service) login(ctx context.Context, sessionID string, user models.User) (models.CurrentUser, string, error) {
	current := models.CurrentUser{
		Phone:     "+91 " + user.Phone,
		Name:      user.Name,
		Email:     user.Email,
		LoginTime: time.Now(),
	}
	if err := s.store.Set(ctx, currentUserKey(sessionID), current); err != nil {
		return models.CurrentUser{}, "", fmt.Errorf("persist current user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return models.CurrentUser{}, "", err
	}
	return current, token, nil
}

func (s *Service) issueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"phone": user.Phone,
		"name":  user.Name,
		"email": user.Email,
		"exp":   time.Now().Add(s.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Current returns the logged-in snapshot for the session if one exists.
func (s *Service) Current(ctx context.Context, sessionID string) (models.CurrentUser, error) {
	var current models.CurrentUser
	err := s.store.Get(ctx, currentUserKey(sessionID), &current)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return models.CurrentUser{}, ErrNotLoggedIn
	}
	if err != nil {
		return models.CurrentUser{}, err
	}
	return current, nil
}

// Logout clears the logged-in snapshot.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, currentUserKey(sessionID))
}

// DemoOTP exposes the fixed code so the UI layer can surface it in the
// simulated "code sent" notification, exactly like the demo it stands in for.
func (s *Service) DemoOTP() string {
	return s.demoOTP
}
