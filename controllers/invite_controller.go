package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"teamnest/config"
	"teamnest/models"
	"teamnest/repositories"
	"teamnest/utils"

	"github.com/gofiber/fiber/v2"
)

// InviteMailer is the slice of the mailer the invite flow needs.
type InviteMailer interface {
	SendInviteEmail(to, inviterName, link string) error
}

// VerifyFunc checks an invitee address before an invite is stored.
type VerifyFunc func(email string) *utils.VerificationResult

type CreateInviteRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

type InviteController struct {
	Invites repositories.InviteRepository
	Mailer  InviteMailer
	Hub     *InviteHub
	Verify  VerifyFunc
	Logger  *log.Logger
}

func NewInviteController(invites repositories.InviteRepository, mailer InviteMailer, hub *InviteHub, logger *log.Logger) *InviteController {
	return &InviteController{
		Invites: invites,
		Mailer:  mailer,
		Hub:     hub,
		Verify:  utils.VerifyInviteeAddress,
		Logger:  logger,
	}
}

// ListInvites returns every pending invite addressed to the session
// user's email, and never anyone else's.
func (ic *InviteController) ListInvites(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	invites, err := ic.Invites.For(user.Email).List(c.Context())
	if err != nil {
		ic.Logger.Printf("Error listing invites for %s: %v", user.Email, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "An unexpected error occurred", nil)
	}

	response := utils.OKResponse("Success!")
	response["invites"] = invites
	return c.JSON(response)
}

// CreateInvite stores a new invite token for the target email and
// sends the invitation email. The team being invited to is the
// inviter's own email address.
func (ic *InviteController) CreateInvite(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Reject request if session user's email matches the email being invited
	if req.Email != "" && strings.EqualFold(req.Email, user.Email) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "You can not invite yourself to a team!", nil)
	}

	// Reject request if email is missing
	if req.Email == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "An email address is required to send an invite!", nil)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// Vet the address before anything is stored
	verification := ic.Verify(req.Email)
	if !verification.Deliverable() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, verification.Details, nil)
	}

	invite := models.InviteToken{
		Team:              user.Email,
		InvitedByUserName: user.DisplayName(),
		InvitedByUserID:   user.ID,
		InvitedUserName:   verification.Email,
		ExpiresAt:         time.Now().Add(models.InviteDuration),
	}

	if err := ic.Invites.Create(c.Context(), &invite); err != nil {
		utils.LogError("invite_create_failed", err, map[string]interface{}{
			"inviter_id": user.ID,
			"invitee":    verification.Email,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "An error occurred during insert", nil)
	}

	// Notify the invitee's open dashboard sessions, if any
	ic.Hub.Publish(invite.InvitedUserName, InviteEvent{
		Type:   "invite.created",
		Invite: &invite,
	})

	acceptLink := config.AppConfig.AppURL + "/view-invites"
	if err := ic.Mailer.SendInviteEmail(invite.InvitedUserName, invite.InvitedByUserName, acceptLink); err != nil {
		utils.LogError("invite_email_failed", err, map[string]interface{}{
			"inviter_id": user.ID,
			"invitee":    invite.InvitedUserName,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError,
			"Invite was created but the invitation email could not be delivered", nil)
	}

	ic.Logger.Printf("User %d invited %s to team %s", user.ID, invite.InvitedUserName, invite.Team)

	response := utils.OKResponse("Invite posted successfully")
	response["insert"] = invite
	return c.JSON(response)
}

// AcceptInvite consumes the invite token and appends the invite's team
// to the session user's memberships. Both mutations happen in a single
// transaction: either the token is gone and the membership exists, or
// neither changed.
func (ic *InviteController) AcceptInvite(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	inviteID := utils.ParseUint(c.Query("inviteId"))
	if inviteID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid invite token ID", nil)
	}

	invite, err := ic.Invites.For(user.Email).Accept(c.Context(), inviteID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInviteNotFound):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invite token not found", nil)
		case errors.Is(err, repositories.ErrInviteExpired):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invite token has expired", nil)
		case errors.Is(err, repositories.ErrUserNotFound):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "User record not found", nil)
		default:
			utils.LogError("invite_accept_failed", err, map[string]interface{}{
				"user_id":   user.ID,
				"invite_id": inviteID,
			})
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "An unexpected error occurred", nil)
		}
	}

	ic.Logger.Printf("User %d joined team %s via invite %d", user.ID, invite.Team, invite.ID)

	return c.JSON(utils.OKResponse("Invite token successfully accepted."))
}

// RejectInvite deletes the invite token without touching the user
// record. Rejecting an already-gone token reports not found.
func (ic *InviteController) RejectInvite(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	inviteID := utils.ParseUint(c.Query("inviteId"))
	if inviteID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid invite token ID", nil)
	}

	err := ic.Invites.For(user.Email).Reject(c.Context(), inviteID)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invite token not found", nil)
		}
		utils.LogError("invite_reject_failed", err, map[string]interface{}{
			"user_id":   user.ID,
			"invite_id": inviteID,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "An unexpected error occurred", nil)
	}

	return c.JSON(utils.OKResponse("Invite token deleted successfully."))
}
