package controller

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"teamnest/config"
	"teamnest/models"
	"teamnest/repositories"
	"teamnest/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMailer is the slice of the mailer the sign-in flow needs.
type AuthMailer interface {
	SendSignInEmail(to, link string) error
}

type SignInRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthController struct {
	Users  repositories.UserRepository
	Mailer AuthMailer
	Logger *log.Logger
}

func NewAuthController(users repositories.UserRepository, mailer AuthMailer, logger *log.Logger) *AuthController {
	return &AuthController{
		Users:  users,
		Mailer: mailer,
		Logger: logger,
	}
}

// RequestSignIn emails a one-time sign-in link to the address. The
// response does not reveal whether an account already existed.
func (ac *AuthController) RequestSignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := ac.Users.FindOrCreateByEmail(c.Context(), email)
	if err != nil {
		utils.LogError("signin_user_lookup_failed", err, map[string]interface{}{"email": email})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "An unexpected error occurred", nil)
	}

	// Don't re-send while a fresh link is still in transit
	if user.SignInTokenSentAt != nil && time.Since(*user.SignInTokenSentAt) < utils.SignInTokenCooldown {
		return c.JSON(utils.OKResponse("A sign-in link was sent recently. Please check your inbox."))
	}

	token, err := utils.GenerateSignInToken()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate sign-in token", nil)
	}

	hash, err := utils.HashSignInToken(token)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate sign-in token", nil)
	}

	now := time.Now()
	expires := now.Add(utils.SignInTokenExpiry)
	user.SignInTokenHash = hash
	user.SignInTokenExpiresAt = &expires
	user.SignInTokenSentAt = &now

	if err := ac.Users.Update(c.Context(), user); err != nil {
		utils.LogError("signin_token_store_failed", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "An unexpected error occurred", nil)
	}

	link := fmt.Sprintf("%s/auth/callback?email=%s&token=%s",
		config.AppConfig.AppURL, url.QueryEscape(email), url.QueryEscape(token))

	if err := ac.Mailer.SendSignInEmail(email, link); err != nil {
		utils.LogError("signin_email_failed", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send sign-in email", nil)
	}

	ac.Logger.Printf("Sign-in link sent to user %d", user.ID)

	return c.JSON(utils.OKResponse("Sign-in link sent. Please check your inbox."))
}

// SignInCallback exchanges the emailed token for a session. The token
// is single use: its hash is cleared before cookies are issued.
func (ac *AuthController) SignInCallback(c *fiber.Ctx) error {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	token := c.Query("token")
	if email == "" || token == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sign-in link", nil)
	}

	user, err := ac.Users.GetByEmail(c.Context(), email)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Sign-in link is invalid or has expired", nil)
	}

	if user.SignInTokenHash == "" ||
		user.SignInTokenExpiresAt == nil ||
		time.Now().After(*user.SignInTokenExpiresAt) ||
		!utils.CheckSignInToken(user.SignInTokenHash, token) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Sign-in link is invalid or has expired", nil)
	}

	user.SignInTokenHash = ""
	user.SignInTokenExpiresAt = nil
	user.EmailVerified = true

	if err := ac.Users.Update(c.Context(), user); err != nil {
		utils.LogError("signin_token_clear_failed", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "An unexpected error occurred", nil)
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate session tokens", nil)
	}

	setAuthCookies(c, accessToken, refreshToken)

	ac.Logger.Printf("User %d signed in", user.ID)

	response := utils.OKResponse("Signed in successfully")
	response["user"] = user
	return c.JSON(response)
}

// RefreshToken rotates the session cookie pair.
func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	_ = c.BodyParser(&req)

	token := req.RefreshToken
	if token == "" {
		token = c.Cookies("refresh_token")
	}
	if token == "" {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Refresh token required", nil)
	}

	claims, err := utils.ParseJWTToken(token)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired refresh token", nil)
	}

	user, err := ac.Users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", nil)
	}

	if claims.TokenVersion != user.TokenVersion {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token version", nil)
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate session tokens", nil)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return c.JSON(utils.OKResponse("Session refreshed"))
}

// Logout invalidates every outstanding session token for the user.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	user.TokenVersion++
	if err := ac.Users.Update(c.Context(), user); err != nil {
		utils.LogError("logout_failed", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "An unexpected error occurred", nil)
	}

	clearAuthCookies(c)

	return c.JSON(utils.OKResponse("Logged out successfully"))
}

// GetCurrentUser returns the session user with team memberships.
func (ac *AuthController) GetCurrentUser(c *fiber.Ctx) error {
	sessionUser := c.Locals("user").(*models.User)

	user, err := ac.Users.GetByID(c.Context(), sessionUser.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", nil)
	}

	response := utils.OKResponse("Success!")
	response["user"] = user
	return c.JSON(response)
}

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	secure := config.AppConfig.Environment == "production"

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(utils.AccessTokenExpiry),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  time.Now().Add(utils.RefreshTokenExpiry),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  expired,
			HTTPOnly: true,
		})
	}
}
