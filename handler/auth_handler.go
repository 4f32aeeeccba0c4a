package handler

import (
	"errors"
	"log"
	"time"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/dto"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/middleware"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/services"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/usecase"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/utils"

	"github.com/gin-gonic/gin"
)

func RegistrationHandler(c *gin.Context, userService *usecase.UserService) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.TrackAuthAttempt("failure", "register")
		utils.BadRequest(c, "missing fields")
		return
	}

	user, token, err := userService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		middleware.TrackAuthAttempt("failure", "register")
		switch {
		case errors.Is(err, usecase.ErrInvalidInput):
			utils.BadRequest(c, "missing fields")
		case errors.Is(err, usecase.ErrDuplicateUser):
			utils.BadRequest(c, "user already registered")
		default:
			log.Printf("register failed: %v", err)
			middleware.TrackError("auth")
			utils.InternalError(c, "registration error")
		}
		return
	}

	middleware.TrackAuthAttempt("success", "register")
	c.JSON(201, dto.AuthResponse{User: user.Public(), Token: token})
}

func LoginHandler(c *gin.Context, userService *usecase.UserService) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.TrackAuthAttempt("failure", "login")
		utils.BadRequest(c, "missing fields")
		return
	}

	user, token, err := userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.TrackAuthAttempt("failure", "login")
		switch {
		case errors.Is(err, usecase.ErrInvalidInput), errors.Is(err, usecase.ErrInvalidCredentials):
			utils.BadRequest(c, "invalid credentials")
		default:
			log.Printf("login failed: %v", err)
			middleware.TrackError("auth")
			utils.InternalError(c, "login error")
		}
		return
	}

	middleware.TrackAuthAttempt("success", "login")
	c.JSON(200, dto.AuthResponse{User: user.Public(), Token: token})
}

// LogoutHandler blacklists the presented token for the remainder of its
// validity. Without Redis the token simply stays valid until it expires;
// the client discards its copy either way.
func LogoutHandler(c *gin.Context, tokens *services.TokenService, blacklist *services.TokenBlacklist) {
	if blacklist == nil {
		c.JSON(200, dto.MessageResponse{Message: "logged out"})
		return
	}

	tokenString := c.GetString(middleware.ContextToken)
	claims, err := tokens.Verify(tokenString)
	if err != nil {
		utils.Unauthorized(c, "invalid token")
		return
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := blacklist.Add(c.Request.Context(), tokenString, ttl); err != nil {
		log.Printf("failed to blacklist token: %v", err)
		utils.InternalError(c, "logout error")
		return
	}

	c.JSON(200, dto.MessageResponse{Message: "logged out"})
}
