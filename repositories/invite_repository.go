package repositories

import (
	"context"
	"errors"
	"time"

	"teamnest/models"

	"gorm.io/gorm"
)

var (
	ErrInviteNotFound = errors.New("invite token not found")
	ErrInviteExpired  = errors.New("invite token has expired")
	ErrUserNotFound   = errors.New("user record not found")
)

// InviteRepository is the storage surface for invite tokens. All reads
// and mutations of existing tokens go through For, which scopes every
// query to one invitee email so authorization is enforced in one place
// instead of per call site.
type InviteRepository interface {
	Create(ctx context.Context, invite *models.InviteToken) error
	For(email string) CallerInvites
	DeleteExpired(ctx context.Context) (int64, error)
}

// CallerInvites is a view of the invite collection restricted to
// tokens addressed to a single email. A token belonging to anyone else
// is indistinguishable from a missing one.
type CallerInvites interface {
	List(ctx context.Context) ([]models.InviteToken, error)
	Reject(ctx context.Context, inviteID uint) error
	Accept(ctx context.Context, inviteID uint) (*models.InviteToken, error)
}

type gormInviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &gormInviteRepository{db: db}
}

func (r *gormInviteRepository) Create(ctx context.Context, invite *models.InviteToken) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *gormInviteRepository) For(email string) CallerInvites {
	return &callerInvites{db: r.db, email: email}
}

func (r *gormInviteRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.InviteToken{})
	return result.RowsAffected, result.Error
}

type callerInvites struct {
	db    *gorm.DB
	email string
}

func (r *callerInvites) List(ctx context.Context) ([]models.InviteToken, error) {
	invites := make([]models.InviteToken, 0)
	err := r.db.WithContext(ctx).
		Where("invited_user_name = ?", r.email).
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *callerInvites) Reject(ctx context.Context, inviteID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND invited_user_name = ?", inviteID, r.email).
		Delete(&models.InviteToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// Accept consumes the invite and grants the membership inside one
// transaction, so the token is never deleted without the team landing
// on the user record.
func (r *callerInvites) Accept(ctx context.Context, inviteID uint) (*models.InviteToken, error) {
	var invite models.InviteToken

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND invited_user_name = ?", inviteID, r.email).
			First(&invite).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		if invite.Expired() {
			return ErrInviteExpired
		}

		var user models.User
		if err := tx.Where("email = ?", r.email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		// A concurrent accept or reject may have consumed the token
		// between the read and this delete; under READ COMMITTED the
		// loser's delete matches zero rows instead of erroring.
		res := tx.Delete(&models.InviteToken{}, invite.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteNotFound
		}

		membership := models.TeamMembership{
			UserID: user.ID,
			Team:   invite.Team,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	return &invite, nil
}
