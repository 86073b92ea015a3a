package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"tinhme/internal/domain"

	"github.com/google/uuid"
)

func insertToken(t *testing.T, userID uuid.UUID) *domain.RefreshToken {
	t.Helper()

	token := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		CreatedAt: time.Now(),
	}
	if err := NewRefreshTokenRepository(testDB).Create(context.Background(), token); err != nil {
		t.Fatalf("failed to insert refresh token: %v", err)
	}
	return token
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	repo := NewRefreshTokenRepository(testDB)
	ctx := context.Background()

	user := insertUser(t, domain.RoleCustomer)
	token := insertToken(t, user.ID)

	found, err := repo.FindByToken(ctx, token.Token)
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if found.UserID != user.ID || found.Revoked {
		t.Errorf("unexpected token: %+v", found)
	}
}

func TestRevokedTokenIsRejected(t *testing.T) {
	repo := NewRefreshTokenRepository(testDB)
	ctx := context.Background()

	user := insertUser(t, domain.RoleCustomer)
	token := insertToken(t, user.ID)

	if err := repo.Revoke(ctx, token.Token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if _, err := repo.FindByToken(ctx, token.Token); !errors.Is(err, ErrRefreshTokenRevoked) {
		t.Errorf("expected ErrRefreshTokenRevoked, got %v", err)
	}
}

func TestRevokeAllForUserSweepsEveryLiveToken(t *testing.T) {
	repo := NewRefreshTokenRepository(testDB)
	ctx := context.Background()

	user := insertUser(t, domain.RoleCustomer)
	first := insertToken(t, user.ID)
	second := insertToken(t, user.ID)

	if err := repo.RevokeAllForUser(ctx, user.ID); err != nil {
		t.Fatalf("RevokeAllForUser failed: %v", err)
	}

	for _, token := range []*domain.RefreshToken{first, second} {
		if _, err := repo.FindByToken(ctx, token.Token); !errors.Is(err, ErrRefreshTokenRevoked) {
			t.Errorf("token %s should be revoked, got %v", token.Token, err)
		}
	}
}

func TestRevokeUnknownTokenReturnsNotFound(t *testing.T) {
	repo := NewRefreshTokenRepository(testDB)

	err := repo.Revoke(context.Background(), uuid.New().String())
	if !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Errorf("expected ErrRefreshTokenNotFound, got %v", err)
	}
}
