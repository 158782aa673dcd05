package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rcabrera/citywatch/internal/server/services"
)

func (a *API) handleCreateEmergency(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondBadRequest(w, "invalid multipart form")
		return
	}

	image, contentType, err := readImage(r)
	if err != nil {
		respondBadRequest(w, "invalid image attachment")
		return
	}

	emergency, err := a.emergencies.Create(r.Context(), &services.CreateEmergencyInput{
		Category:         r.FormValue("category"),
		FullName:         r.FormValue("fullName"),
		Barangay:         r.FormValue("barangay"),
		Location:         r.FormValue("location"),
		Comment:          r.FormValue("comment"),
		Image:            image,
		ImageContentType: contentType,
		PostedBy:         userID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, envelope{
		"success":   true,
		"message":   "emergency created",
		"emergency": emergency,
	})
}

func (a *API) handleListEmergencies(w http.ResponseWriter, r *http.Request) {
	emergencies, err := a.emergencies.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":     true,
		"message":     "emergencies retrieved",
		"emergencies": emergencies,
	})
}

func (a *API) handleMyEmergencies(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	emergencies, err := a.emergencies.ListBySubmitter(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":     true,
		"message":     "emergencies retrieved",
		"emergencies": emergencies,
	})
}

func (a *API) handleRespondedEmergencies(w http.ResponseWriter, r *http.Request) {
	emergencies, err := a.emergencies.ListResponded(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":     true,
		"message":     "emergencies retrieved",
		"emergencies": emergencies,
	})
}

func (a *API) handleRespondEmergency(w http.ResponseWriter, r *http.Request) {
	emergency, err := a.emergencies.MarkResponded(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":   true,
		"message":   "emergency marked as responded",
		"emergency": emergency,
	})
}

func (a *API) handleArchiveEmergency(w http.ResponseWriter, r *http.Request) {
	emergency, err := a.emergencies.MarkArchived(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":   true,
		"message":   "emergency archived",
		"emergency": emergency,
	})
}

func (a *API) handleDeleteEmergency(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondBadRequest(w, "invalid emergency id")
		return
	}

	if err := a.emergencies.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "emergency deleted",
	})
}
