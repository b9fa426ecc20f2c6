package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	jwt "github.com/golang-jwt/jwt/v5"

	"grievgo/backend/internal/account"
	"grievgo/backend/internal/localization"
	"grievgo/backend/internal/models"
)

// authClaims — дані сесії, отримані з JWT
type authClaims struct {
	Email      string
	Name       string
	Role       string
	Department string
}

// generateJWT генерує JWT для облікового запису
func (h *Handler) generateJWT(u *models.User) (string, error) {
	// Встановлюємо claims, включаючи роль та термін дії
	claims := jwt.MapClaims{
		"email":      u.Email,
		"name":       u.Name,
		"role":       u.Role,
		"department": u.Department,
		"exp":        time.Now().Add(time.Hour * 72).Unix(),
		"iss":        "grievgo-service", // Видавець
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// SignedString тепер використовує v5 синтаксис
	return token.SignedString(h.jwtSecret)
}

// validateToken перевіряє підпис і повертає claims сесії
func (h *Handler) validateToken(tokenString string) (*authClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	department, _ := claims["department"].(string)
	if email == "" || role == "" {
		return nil, errors.New("invalid claims")
	}

	return &authClaims{Email: email, Name: name, Role: role, Department: department}, nil
}

// bearerClaims дістає claims з заголовка Authorization або перериває запит
func (h *Handler) bearerClaims(c *gin.Context) (*authClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return nil, false
	}

	claims, err := h.validateToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return nil, false
	}
	return claims, true
}

// citizenClaims додатково вимагає роль Citizen
func (h *Handler) citizenClaims(c *gin.Context) (*authClaims, bool) {
	claims, ok := h.bearerClaims(c)
	if !ok {
		return nil, false
	}
	if claims.Role != models.RoleCitizen {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Citizen account required"})
		return nil, false
	}
	return claims, true
}

// adminClaims додатково вимагає роль Admin
func (h *Handler) adminClaims(c *gin.Context) (*authClaims, bool) {
	claims, ok := h.bearerClaims(c)
	if !ok {
		return nil, false
	}
	if claims.Role != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin account required"})
		return nil, false
	}
	return claims, true
}

type registerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// RegisterCitizen реєструє нового громадянина та повертає JWT
func (h *Handler) RegisterCitizen(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.Accounts.RegisterCitizen(req.Name, req.Email, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		case errors.Is(err, account.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": h.msg(c, localization.KeyErrValidation), "detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		}
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

type citizenLoginRequest struct {
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// LoginCitizen автентифікує громадянина за email та телефоном
func (h *Handler) LoginCitizen(c *gin.Context) {
	var req citizenLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.Accounts.LoginCitizen(req.Email, req.Phone)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": h.msg(c, localization.KeyErrCredentials)})
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginAdmin автентифікує адміністратора департаменту
func (h *Handler) LoginAdmin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.Accounts.LoginAdmin(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": h.msg(c, localization.KeyErrCredentials)})
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GetProfile повертає профіль поточного користувача
func (h *Handler) GetProfile(c *gin.Context) {
	claims, ok := h.bearerClaims(c)
	if !ok {
		return
	}

	user, err := h.Accounts.Get(claims.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "flaggedForReview": account.FlaggedForReview(user)})
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// UpdateProfile оновлює ім'я та телефон поточного користувача
func (h *Handler) UpdateProfile(c *gin.Context) {
	claims, ok := h.bearerClaims(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.Accounts.UpdateProfile(claims.Email, req.Name, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": h.msg(c, localization.KeyErrValidation), "detail": err.Error()})
		case errors.Is(err, account.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePassword змінює пароль адміністратора
func (h *Handler) ChangePassword(c *gin.Context) {
	claims, ok := h.adminClaims(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.Accounts.ChangePassword(claims.Email, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, account.ErrCredentialMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": h.msg(c, localization.KeyErrCredentials)})
		case errors.Is(err, account.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": h.msg(c, localization.KeyErrValidation), "detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
