package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"magazyn-plikow/internal/auth"
	"magazyn-plikow/internal/database"
	"magazyn-plikow/internal/models"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email" example:"jan@example.com"`
	Password string `json:"password" example:"password123"`
	Name     string `json:"name" example:"Jan Kowalski"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"jan@example.com"`
	Password string `json:"password" example:"password123"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// @Summary      Register a new account
// @Description  Creates an account with the default storage quota and returns a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "Registration data"
// @Success      201              {object}  AuthResponse
// @Failure      400              {object}  ErrorResponse
// @Failure      500              {object}  ErrorResponse
// @Router       /auth/register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("ERROR: Failed to hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	user, err := s.store.CreateUser(r.Context(), database.CreateUserParams{
		ID:                uuid.New().String(),
		Email:             req.Email,
		Name:              req.Name,
		PasswordHash:      hashedPassword,
		StorageLimitBytes: models.DefaultStorageLimitBytes,
	})
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Printf("ERROR: Failed to create user: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := auth.GenerateJWT(user.ID, s.config.JWT.Secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User created successfully",
		Token:   token,
		User:    toUserResponse(user),
	})
}

// @Summary      Log in
// @Description  Verifies credentials and returns a fresh bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Login credentials"
// @Success      200           {object}  AuthResponse
// @Failure      400           {object}  ErrorResponse
// @Failure      401           {object}  ErrorResponse
// @Failure      500           {object}  ErrorResponse
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("ERROR: Failed to look up user: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	// Unknown email and wrong password must be indistinguishable, otherwise
	// the endpoint can be used to enumerate accounts.
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateJWT(user.ID, s.config.JWT.Secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    toUserResponse(user),
	})
}

// @Summary      Get current account
// @Description  Resolves the bearer token to its account and returns the public view.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if user == nil {
		// Validly signed token for an account that no longer exists.
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
