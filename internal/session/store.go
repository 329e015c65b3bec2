package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrStoreDown  = errors.New("session store unavailable")
	ErrEmptyToken = errors.New("empty session token")
)

// Identity is the authenticated principal bound to a browser session. Both
// local logins and federated logins resolve to a durable user row first, so
// UserID is always a valid foreign key for todo operations.
type Identity struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Federated bool   `json:"federated"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TTL          time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		TTL:          24 * time.Hour,
	}
}

func NewStore(config *Config) *Store {
	if config == nil {
		config = DefaultConfig()
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	return &Store{
		client: rdb,
		ttl:    config.TTL,
		ctx:    context.Background(),
	}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Create stores the identity under a fresh random token and returns the token.
func (s *Store) Create(identity Identity) (string, error) {
	token, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("failed to marshal identity: %w", err)
	}

	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()

	if err := s.client.Set(ctx, sessionKey(token.String()), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token.String(), nil
}

// Get resolves a token to its identity and slides the expiry forward, so an
// active browser session stays alive.
func (s *Store) Get(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()

	data, err := s.client.GetEx(ctx, sessionKey(token), s.ttl).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var identity Identity
	if err := json.Unmarshal([]byte(data), &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &identity, nil
}

// Destroy removes the session. Destroying an unknown token is not an error.
func (s *Store) Destroy(token string) error {
	if token == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()

	return s.client.Del(ctx, sessionKey(token)).Err()
}

func (s *Store) Health() error {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
