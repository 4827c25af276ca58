package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"social/auth"
	"social/storage/db/queries"
	"social/storage/models"
	"social/utils"
)

type userSummary struct {
	ID        string `json:"id"`
	Name      string `json:"displayName"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

func summarize(user *models.User) userSummary {
	return userSummary{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if body.Name == "" || body.Email == "" || len(body.Password) < 8 {
		sendError(w, http.StatusBadRequest, "name, email and a password of at least 8 characters are required")
		return
	}

	passwordHash, err := auth.HashPassword(body.Password)
	if err != nil {
		log.Errorf("Error hashing password: %v", err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := models.User{
		ID:           utils.NewID(),
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.queries.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, queries.ErrDuplicateEmail) {
			sendError(w, http.StatusConflict, "email already registered")
			return
		}
		log.Errorf("Error creating user: %v", err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		log.Errorf("Error signing token for user %s: %v", user.ID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sendJson(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  summarize(&user),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	user, err := s.queries.GetUserByEmail(r.Context(), body.Email)
	if err != nil {
		log.Errorf("Error fetching user by email: %v", err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	// Same response for unknown email and wrong password; the client
	// learns nothing about which one failed.
	if user == nil || auth.ComparePassword(user.PasswordHash, body.Password) != nil {
		sendError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		log.Errorf("Error signing token for user %s: %v", user.ID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sendJson(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  summarize(user),
	})
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request, viewerID string) {
	user, err := s.queries.GetUserByID(r.Context(), viewerID)
	if err != nil {
		log.Errorf("Error fetching user %s: %v", viewerID, err)
		sendError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}
	sendJson(w, http.StatusOK, summarize(user))
}
