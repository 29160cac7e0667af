package handlers

import (
	"net/http"
	"strings"
	"time"

	"panveliq/internal/api/response"
	"panveliq/internal/events"
	"panveliq/internal/models"
	"panveliq/internal/utils"
	"panveliq/internal/utils/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var authLog = logger.New("auth")

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
}

// Register creates a client account and its profile.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return response.Internal(c, "failed to create account")
	}
	if count > 0 {
		return response.Fail(c, http.StatusConflict, "an account with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return response.Internal(c, "failed to create account")
	}

	user := models.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.UserRoleClient,
		Status:    models.UserStatusActive,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if req.Company != "" {
			profile := models.ClientProfile{UserID: user.ID, Company: req.Company}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		authLog.Error("registration failed", err)
		return response.Internal(c, "failed to create account")
	}

	events.Emit("user.registered", &user)
	return response.Created(c, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks credentials and issues access and refresh tokens.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	var user models.User
	err := h.db.First(&user, "email = ? AND is_deleted = ?", strings.ToLower(strings.TrimSpace(req.Email)), false).Error
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	if user.Status == models.UserStatusSuspended {
		return response.Fail(c, http.StatusForbidden, "account is suspended")
	}

	access, err := utils.GenerateJWT(&user)
	if err != nil {
		return response.Internal(c, "failed to issue token")
	}
	refresh, err := utils.GenerateRefreshToken(&user)
	if err != nil {
		return response.Internal(c, "failed to issue token")
	}

	session := models.AuthSession{
		UserID:    user.ID,
		Token:     access,
		Refresh:   refresh,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		ExpiresAt: time.Now().Add(utils.RefreshTokenTTL),
	}
	if err := h.db.Create(&session).Error; err != nil {
		authLog.Warn("failed to persist session for %s: %v", user.Email, err)
	}

	return response.OK(c, map[string]interface{}{
		"token":        access,
		"refreshToken": refresh,
		"user":         user,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Refresh exchanges a refresh token for a fresh access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	userID, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid refresh token")
	}

	var user models.User
	if err := h.db.First(&user, "id = ? AND is_deleted = ?", userID, false).Error; err != nil {
		return response.Fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	if user.Status == models.UserStatusSuspended {
		return response.Fail(c, http.StatusForbidden, "account is suspended")
	}

	access, err := utils.GenerateJWT(&user)
	if err != nil {
		return response.Internal(c, "failed to issue token")
	}
	return response.OK(c, map[string]interface{}{"token": access})
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset creates a reset code and hands it to the mailer via
// the event bus. The response never reveals whether the email exists.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	var user models.User
	err := h.db.First(&user, "email = ? AND is_deleted = ?", strings.ToLower(strings.TrimSpace(req.Email)), false).Error
	if err == nil {
		reset := models.PasswordReset{
			UserID:    user.ID,
			Code:      uuid.New().String(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		if err := h.db.Create(&reset).Error; err == nil {
			events.Emit("user.password_reset_requested", &reset)
		}
	}

	return response.Message(c, "if the account exists, a reset email has been sent")
}

type resetConfirmRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ConfirmPasswordReset consumes a reset code and sets the new password.
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req resetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	var reset models.PasswordReset
	err := h.db.First(&reset, "code = ? AND used = ? AND expires_at > ?", req.Code, false, time.Now()).Error
	if err != nil {
		return response.BadRequest(c, "invalid or expired reset code")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return response.Internal(c, "failed to reset password")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password", string(hashed)).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used", true).Error
	})
	if err != nil {
		return response.Internal(c, "failed to reset password")
	}

	return response.Message(c, "password updated")
}
