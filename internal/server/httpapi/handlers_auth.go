package httpapi

import (
	"net/http"
	"time"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/server/services"
)

const birthdayLayout = "2006-01-02"

type registerRequest struct {
	LastName       string `json:"lastname"`
	FirstName      string `json:"firstname"`
	MiddleName     string `json:"middlename"`
	Suffix         string `json:"suffix"`
	HouseNo        string `json:"houseno"`
	Barangay       string `json:"barangay"`
	Birthday       string `json:"birthday"`
	Gender         string `json:"gender"`
	Number         string `json:"number"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	ImageID        string `json:"imageid"`
	Certification  string `json:"certification"`
	ImageClearance string `json:"imageclearance"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	var birthday time.Time
	if req.Birthday != "" {
		var err error
		birthday, err = time.Parse(birthdayLayout, req.Birthday)
		if err != nil {
			v := common.NewValidationError()
			v.Add("birthday", "must be formatted as YYYY-MM-DD")
			respondError(w, v.Err())
			return
		}
	}

	user, err := a.users.Register(r.Context(), &services.RegisterUserRequest{
		LastName:       req.LastName,
		FirstName:      req.FirstName,
		MiddleName:     req.MiddleName,
		Suffix:         req.Suffix,
		HouseNo:        req.HouseNo,
		Barangay:       req.Barangay,
		Birthday:       birthday,
		Gender:         req.Gender,
		Number:         req.Number,
		Email:          req.Email,
		Password:       req.Password,
		ImageID:        req.ImageID,
		Certification:  req.Certification,
		ImageClearance: req.ImageClearance,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "registration successful",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	token, user, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "login successful",
		"token":   token,
		"user":    user,
	})
}

func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	if err := a.users.ForgotPassword(r.Context(), req.Email); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "reset code sent",
	})
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	if err := a.users.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "password reset successful",
	})
}

func (a *API) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	if err := a.users.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "password updated",
	})
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		HouseNo  string `json:"houseno"`
		Barangay string `json:"barangay"`
		Number   string `json:"number"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	user, err := a.users.UpdateContact(r.Context(), req.Email, req.HouseNo, req.Barangay, req.Number)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "user updated",
		"user":    user,
	})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "users retrieved",
		"users":   users,
	})
}
