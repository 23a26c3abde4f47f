package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafflehq/raffle-api/internal/domain"
)

func TestUserService_CreateUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	created, err := svc.CreateUser(context.Background(), domain.User{
		Email: "alice@example.com",
		Name:  "Alice",
	})

	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = svc.CreateUser(context.Background(), domain.User{
		Email: "alice@example.com",
		Name:  "Another Alice",
	})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestUserService_GetUserByEmail(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(1, 2))

	user, err := svc.GetUserByEmail(context.Background(), "user2@example.com")

	require.NoError(t, err)
	assert.Equal(t, uint(2), user.ID)

	_, err = svc.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
