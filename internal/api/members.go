package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clydesc/sailscore/internal/auth"
	"github.com/clydesc/sailscore/internal/database"
)

// --- Structs for JSON Payloads ---

type registerMemberPayload struct {
	Email    string `json:"email"`
	Alias    string `json:"alias"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type loginMemberPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateMemberPayload struct {
	Alias       string `json:"alias"`
	FullName    string `json:"fullName"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// --- HTTP Handlers ---

// handleRegisterMember creates a new club member account.
func (s *Server) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var payload registerMemberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	if payload.Email == "" || payload.Password == "" {
		s.errorJSON(w, errors.New("email and password are required"), http.StatusBadRequest)
		return
	}

	if payload.Alias != "" {
		taken, err := s.db.IsAliasTaken(s.db.DB(), payload.Alias, 0)
		if err != nil {
			s.errorJSON(w, err, http.StatusInternalServerError)
			return
		}
		if taken {
			s.errorJSON(w, errors.New("this alias is already in use"), http.StatusConflict)
			return
		}
	}

	hashedPassword, err := auth.HashPassword(payload.Password)
	if err != nil {
		s.errorJSON(w, errors.New("failed to process password"), http.StatusInternalServerError)
		return
	}

	var member *MemberResponse
	err = s.db.WriteTx(func(tx *sql.Tx) error {
		created, err := s.db.CreateMember(tx, payload.Email, payload.Alias, payload.FullName, hashedPassword)
		if err != nil {
			return err
		}
		resp := toMemberResponse(created)
		member = &resp
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			s.errorJSON(w, errors.New("a member with this email already exists"), http.StatusConflict)
			return
		}
		s.errorJSON(w, errors.New("failed to create member"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, envelope{"member": member})
}

// handleLoginMember verifies credentials and issues a session token.
func (s *Server) handleLoginMember(w http.ResponseWriter, r *http.Request) {
	var payload loginMemberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	member, err := s.db.GetMemberByEmail(s.db.DB(), payload.Email)
	if err != nil {
		// Don't reveal whether the email exists.
		s.errorJSON(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}

	if !member.PasswordHash.Valid || !auth.CheckPasswordHash(payload.Password, member.PasswordHash.String) {
		s.errorJSON(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(member.ID, s.config.JwtSecret)
	if err != nil {
		s.errorJSON(w, errors.New("failed to generate session token"), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"token": token, "member": toMemberResponse(member)})
}

// handleGetMyProfile returns the logged-in member's profile.
func (s *Server) handleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	memberID, err := s.getMemberIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	member, err := s.db.GetMemberByID(s.db.DB(), memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.errorJSON(w, errors.New("member not found"), http.StatusNotFound)
			return
		}
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"member": toMemberResponse(member)})
}

// handleUpdateMyProfile updates the member's alias, full name and/or
// password. Changing the password requires the old one.
func (s *Server) handleUpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	memberID, err := s.getMemberIDFromContext(r)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	var payload updateMemberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	member, err := s.db.GetMemberByID(s.db.DB(), memberID)
	if err != nil {
		s.errorJSON(w, errors.New("member not found"), http.StatusNotFound)
		return
	}

	if payload.Alias != "" {
		taken, err := s.db.IsAliasTaken(s.db.DB(), payload.Alias, memberID)
		if err != nil {
			s.errorJSON(w, err, http.StatusInternalServerError)
			return
		}
		if taken {
			s.errorJSON(w, errors.New("this alias is already in use"), http.StatusConflict)
			return
		}
	}

	hashedPassword := ""
	if payload.NewPassword != "" {
		if !member.PasswordHash.Valid || !auth.CheckPasswordHash(payload.OldPassword, member.PasswordHash.String) {
			s.errorJSON(w, errors.New("old password is incorrect"), http.StatusUnauthorized)
			return
		}
		hashedPassword, err = auth.HashPassword(payload.NewPassword)
		if err != nil {
			s.errorJSON(w, errors.New("failed to process password"), http.StatusInternalServerError)
			return
		}
	}

	if payload.Alias == "" && payload.FullName == "" && hashedPassword == "" {
		s.errorJSON(w, errors.New("nothing to update"), http.StatusBadRequest)
		return
	}

	err = s.db.WriteTx(func(tx *sql.Tx) error {
		return s.db.UpdateMember(tx, memberID, payload.Alias, payload.FullName, hashedPassword)
	})
	if err != nil {
		s.errorJSON(w, errors.New("failed to update profile"), http.StatusInternalServerError)
		return
	}

	updated, err := s.db.GetMemberByID(s.db.DB(), memberID)
	if err != nil {
		s.errorJSON(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{"member": toMemberResponse(updated)})
}
