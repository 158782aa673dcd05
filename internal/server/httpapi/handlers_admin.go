package httpapi

import "net/http"

func (a *API) handleAdminRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	admin, err := a.admins.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "admin registered",
		"admin":   admin,
	})
}

func (a *API) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	token, admin, err := a.admins.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "login successful",
		"token":   token,
		"admin":   admin,
	})
}

func (a *API) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := a.admins.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "admins retrieved",
		"admins":  admins,
	})
}
