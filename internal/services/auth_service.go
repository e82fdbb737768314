package services

import (
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/kirin765/naver-smartstore/internal/config"
	"github.com/kirin765/naver-smartstore/internal/middleware"
	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/store"
)

const maxBodyBytes = 1_048_576 // 1 MB

type AuthService struct {
	users       store.UserStore
	redis       redis.Cmdable
	validator   *ValidationHelper
	jwt         config.JWTConfig
	argon       config.Argon2Config
	signupGrant int64
}

// SignupRequest represents the signup request payload
// @Description Signup request structure
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" example:"seller@example.com"` // User email address
	Password string `json:"password" validate:"required,min=8,max=128" example:"password123"`   // User password
	FullName string `json:"fullName" validate:"max=100" example:"김셀러"`                          // Display name
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"seller@example.com"` // User email address
	Password string `json:"password" validate:"required" example:"password123"`          // User password
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token   string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // JWT token
	User    *models.User `json:"user"`                                                    // User information
	Credits int64        `json:"credits" example:"10"`                                    // Current credit balance
}

func NewAuthService(users store.UserStore, redisClient *redis.Client, jwtCfg config.JWTConfig, argonCfg config.Argon2Config, signupGrant int64) *AuthService {
	s := &AuthService{
		users:       users,
		validator:   NewValidationHelper(),
		jwt:         jwtCfg,
		argon:       argonCfg,
		signupGrant: signupGrant,
	}
	if redisClient != nil {
		s.redis = redisClient
	}
	return s
}

func (s *AuthService) sendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	SendErrorResponse(w, message, statusCode, validationErr)
}

// Signup handles user registration
// @Summary Register a new user
// @Description Create a user with a credit account holding the signup grant
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup request"
// @Success 201 {object} AuthResponse "Signup successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 409 {object} ErrorResponse "Email already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/signup [post]
func (s *AuthService) Signup(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Signup attempt from IP: %s", r.RemoteAddr)

	var req SignupRequest
	if !s.decode(w, r, &req) {
		return
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		log.Printf("[AUTH] Password hashing failed for %s: %v", req.Email, err)
		s.sendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hashedPassword,
	}
	if err := s.users.CreateUser(r.Context(), user, s.signupGrant); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			log.Printf("[AUTH] Signup rejected, email exists: %s", user.Email)
			s.sendErrorResponse(w, "Email Already Exists", http.StatusConflict, nil)
			return
		}
		log.Printf("[AUTH] User creation failed for %s: %v", user.Email, err)
		s.sendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %s: %v", user.ID, err)
		s.sendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Signup successful for user %s", user.ID)
	SendJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user, Credits: s.signupGrant})
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	var req LoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Printf("[AUTH] User lookup failed for %s: %v", req.Email, err)
			s.sendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
			return
		}
		log.Printf("[AUTH] User not found for email: %s", req.Email)
		s.sendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	if !s.verifyPassword(req.Password, user.PasswordHash) {
		log.Printf("[AUTH] Invalid password for user: %s", user.ID)
		s.sendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %s: %v", user.ID, err)
		s.sendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Login successful for user %s", user.ID)
	SendJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout user and blacklist token until it expires
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /auth/logout [post]
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if ok && token != "" && s.redis != nil {
		s.revoke(r, token)
	}

	SendJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// revoke blacklists a token we issued for the rest of its lifetime. Tokens
// that do not verify are ignored so callers cannot fill Redis.
func (s *AuthService) revoke(r *http.Request, token string) {
	userID, expiresAt, err := middleware.ParseToken(token, s.jwt.SecretKey)
	if err != nil {
		log.Printf("[AUTH] Logout with invalid token from %s: %v", r.RemoteAddr, err)
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if err := s.redis.Set(r.Context(), middleware.BlacklistKey(token), "1", ttl).Err(); err != nil {
		log.Printf("[AUTH] Failed to blacklist token for user %s: %v", userID, err)
		return
	}
	log.Printf("[AUTH] Logout successful for user %s", userID)
}

// Me returns the authenticated user
// @Summary Get current user
// @Description Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User "User details"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/me [get]
func (s *AuthService) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		s.sendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	user, err := s.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Printf("[AUTH] User not found for ID: %s", userID)
			s.sendErrorResponse(w, "User not found", http.StatusNotFound, nil)
			return
		}
		log.Printf("[AUTH] Failed to fetch user %s: %v", userID, err)
		s.sendErrorResponse(w, "Failed to fetch user details", http.StatusInternalServerError, nil)
		return
	}
	SendJSON(w, http.StatusOK, user)
}

// decode reads a single JSON object into dst and validates it. It writes the
// error response and returns false on failure.
func (s *AuthService) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		log.Printf("[AUTH] Invalid request: %v", err)
		s.sendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		log.Printf("[AUTH] Multiple JSON objects detected")
		s.sendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	if err := s.validator.ValidateStruct(dst); err != nil {
		log.Printf("[AUTH] Validation failed: %v", err)
		s.sendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *AuthService) generateJWT(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(s.jwt.ExpiryHours) * time.Hour).Unix(),
	})

	return token.SignedString([]byte(s.jwt.SecretKey))
}

func (s *AuthService) hashPassword(password string) (string, error) {
	salt := make([]byte, s.argon.SaltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, s.argon.Time, s.argon.Memory, s.argon.Threads, s.argon.KeyLength)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func (s *AuthService) verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, s.argon.Time, s.argon.Memory, s.argon.Threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computedHash) == 1
}
