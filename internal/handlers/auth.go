package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"clothfit/internal/auth"
)

type registerRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type loginRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type verifyRequest struct {
	OTP string `json:"otp" binding:"required"`
}

// Register validates the registration form and starts the verification step.
// The demo code is echoed back in place of a real delivery channel.
func Register(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "all fields are required")
			return
		}

		err := svc.StartRegistration(c.Request.Context(), sessionIDFrom(c), auth.RegistrationInput{
			Name:            req.Name,
			Email:           req.Email,
			Phone:           req.Phone,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
		})
		if err != nil {
			respondWithError(c, authStatus(err), route, authMessage(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Verification OTP sent! Demo OTP: %s", svc.DemoOTP()),
		})
	}
}

// RegisterVerify confirms the code, creates the account and logs in.
func RegisterVerify(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register/verify"
		defer handlePanic(c, route)

		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "otp is required")
			return
		}

		user, token, err := svc.VerifyRegistration(c.Request.Context(), sessionIDFrom(c), req.OTP)
		if err != nil {
			respondWithError(c, authStatus(err), route, authMessage(err))
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"accessToken": token,
			"user":        user,
			"message":     fmt.Sprintf("Welcome to ClothFit, %s!", user.Name),
		})
	}
}

// Login checks the phone belongs to an account and starts verification.
func Login(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "phone is required")
			return
		}

		if err := svc.StartLogin(c.Request.Context(), sessionIDFrom(c), req.Phone); err != nil {
			respondWithError(c, authStatus(err), route, authMessage(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("OTP sent successfully! Demo OTP: %s", svc.DemoOTP()),
		})
	}
}

// LoginVerify confirms the code and logs in.
func LoginVerify(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login/verify"
		defer handlePanic(c, route)

		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "otp is required")
			return
		}

		user, token, err := svc.VerifyLogin(c.Request.Context(), sessionIDFrom(c), req.OTP)
		if err != nil {
			respondWithError(c, authStatus(err), route, authMessage(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"accessToken": token,
			"user":        user,
			"message":     fmt.Sprintf("Welcome back, %s!", user.Name),
		})
	}
}

// GetMe returns the logged-in snapshot for the session.
func GetMe(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me"
		defer handlePanic(c, route)

		user, err := svc.Current(c.Request.Context(), sessionIDFrom(c))
		if errors.Is(err, auth.ErrNotLoggedIn) {
			respondWithError(c, http.StatusUnauthorized, route, "not logged in")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not load user")
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// Logout clears the logged-in snapshot.
func Logout(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/logout"
		defer handlePanic(c, route)

		if err := svc.Logout(c.Request.Context(), sessionIDFrom(c)); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not log out")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidOTP),
		errors.Is(err, auth.ErrNoPendingVerify):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrFieldsRequired),
		errors.Is(err, auth.ErrInvalidPhone),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordMismatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrFieldsRequired):
		return "Please fill all fields"
	case errors.Is(err, auth.ErrInvalidPhone):
		return "Please enter a valid 10-digit mobile number"
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "Password must be at least 6 characters"
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "Passwords do not match"
	case errors.Is(err, auth.ErrAccountExists):
		return "Account already exists with this phone or email. Please login."
	case errors.Is(err, auth.ErrAccountNotFound):
		return "Account not found. Please register first."
	case errors.Is(err, auth.ErrInvalidOTP):
		return "Invalid OTP. Please try again."
	case errors.Is(err, auth.ErrNoPendingVerify):
		return "No verification in progress"
	}
	return "something went wrong"
}
