package worker

import (
	"context"
	"log"
	"time"

	"teamnest/repositories"
)

// CleanupWorker periodically purges expired invite tokens and expired
// sign-in token state so the tables don't accumulate dead records.
type CleanupWorker struct {
	Invites  repositories.InviteRepository
	Users    repositories.UserRepository
	Logger   *log.Logger
	Interval time.Duration
}

func NewCleanupWorker(invites repositories.InviteRepository, users repositories.UserRepository, logger *log.Logger) *CleanupWorker {
	return &CleanupWorker{
		Invites:  invites,
		Users:    users,
		Logger:   logger,
		Interval: time.Hour,
	}
}

func (cw *CleanupWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	select {
	case <-ctx.Done():
		return
	case <-time.After(10 * time.Second):
	}

	cw.Logger.Println("Cleanup worker started")

	ticker := time.NewTicker(cw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.Logger.Println("Cleanup worker shutting down...")
			return
		case <-ticker.C:
			cw.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single purge pass.
func (cw *CleanupWorker) RunOnce(ctx context.Context) {
	invites, err := cw.Invites.DeleteExpired(ctx)
	if err != nil {
		cw.Logger.Printf("Error purging expired invites: %v", err)
	} else if invites > 0 {
		cw.Logger.Printf("Purged %d expired invite tokens", invites)
	}

	tokens, err := cw.Users.ClearExpiredSignInTokens(ctx)
	if err != nil {
		cw.Logger.Printf("Error clearing expired sign-in tokens: %v", err)
	} else if tokens > 0 {
		cw.Logger.Printf("Cleared %d expired sign-in tokens", tokens)
	}
}
