package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrInvalidTokenID = errors.New("token id is required")

// RevokedTokenKey is the redis key marking a token id as revoked.
func RevokedTokenKey(tokenID string) string {
	return fmt.Sprintf("revoked_token:%s", tokenID)
}

// TokenRevocationService keeps a deny list of access token ids.
type TokenRevocationService interface {
	// Revoke denies tokenID for ttl, which should cover the token's
	// remaining lifetime.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type tokenRevocationService struct {
	log         *logrus.Logger
	redisClient *redis.Client
}

func NewTokenRevocationService(log *logrus.Logger, redisClient *redis.Client) TokenRevocationService {
	return &tokenRevocationService{
		log:         log,
		redisClient: redisClient,
	}
}

func (s *tokenRevocationService) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return ErrInvalidTokenID
	}
	if err := s.redisClient.Set(ctx, RevokedTokenKey(tokenID), "1", ttl).Err(); err != nil {
		s.log.Warnf("Failed to revoke token: %+v", err)
		return err
	}
	return nil
}

func (s *tokenRevocationService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redisClient.Exists(ctx, RevokedTokenKey(tokenID)).Result()
	if err != nil {
		s.log.Warnf("Failed to check token revocation: %+v", err)
		return false, err
	}
	return n > 0, nil
}
