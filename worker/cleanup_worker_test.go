package worker

import (
	"context"
	"io"
	"log"
	"testing"

	"teamnest/models"
	"teamnest/repositories"

	"github.com/stretchr/testify/assert"
)

type stubInviteRepo struct {
	purged int
}

func (s *stubInviteRepo) Create(context.Context, *models.InviteToken) error { return nil }
func (s *stubInviteRepo) For(string) repositories.CallerInvites             { return nil }
func (s *stubInviteRepo) DeleteExpired(context.Context) (int64, error) {
	s.purged++
	return 2, nil
}

type stubUserRepo struct {
	cleared int
}

func (s *stubUserRepo) FindOrCreateByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}
func (s *stubUserRepo) GetByEmail(context.Context, string) (*models.User, error) { return nil, nil }
func (s *stubUserRepo) GetByID(context.Context, uint) (*models.User, error)      { return nil, nil }
func (s *stubUserRepo) Update(context.Context, *models.User) error               { return nil }
func (s *stubUserRepo) ClearExpiredSignInTokens(context.Context) (int64, error) {
	s.cleared++
	return 1, nil
}

func TestCleanupWorkerRunOnce(t *testing.T) {
	invites := &stubInviteRepo{}
	users := &stubUserRepo{}

	cw := NewCleanupWorker(invites, users, log.New(io.Discard, "", 0))
	cw.RunOnce(context.Background())

	assert.Equal(t, 1, invites.purged)
	assert.Equal(t, 1, users.cleared)
}
