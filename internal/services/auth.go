package services

import (
	"errors"
	"fmt"
	"strings"

	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUsernameTaken is surfaced to the user as a plain-text conflict
	// message on registration.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials covers both unknown-username and wrong-password
	// so login failures are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type AuthService interface {
	RegisterUser(db *gorm.DB, username, password string) (*models.User, error)
	LoginUser(db *gorm.DB, username, password string) (*models.User, error)
	ResolveFederated(db *gorm.DB, email, name string) (*models.User, error)
}

type AuthServiceImpl struct {
	bcryptCost int
}

func NewAuthService(bcryptCost int) *AuthServiceImpl {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{bcryptCost: bcryptCost}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

// RegisterUser creates a local account with a trimmed username and a bcrypt
// digest. A duplicate username returns ErrUsernameTaken and leaves the
// existing row untouched.
func (s *AuthServiceImpl) RegisterUser(db *gorm.DB, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Password: string(hashedPassword),
	}
	if err := db.Create(&user).Error; err != nil {
		// Covers the race where the same username lands between the
		// existence check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// LoginUser authenticates a local username/password pair.
func (s *AuthServiceImpl) LoginUser(db *gorm.DB, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// ResolveFederated maps an identity asserted by an external provider to a
// durable local user row, creating one on first login. The row is keyed by
// username=email and carries a random unusable password digest, so every
// authentication method yields a stable user ID for todo ownership.
func (s *AuthServiceImpl) ResolveFederated(db *gorm.DB, email, _ string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := db.Where("username = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up federated user: %w", err)
	}

	random, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate placeholder secret: %w", err)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(random.String()), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder secret: %w", err)
	}

	user = models.User{
		Username: email,
		Password: string(hashedPassword),
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent first login with the same email; reuse the winner.
			if lookupErr := db.Where("username = ?", email).First(&user).Error; lookupErr == nil {
				return &user, nil
			}
		}
		return nil, fmt.Errorf("failed to create federated user: %w", err)
	}

	return &user, nil
}
