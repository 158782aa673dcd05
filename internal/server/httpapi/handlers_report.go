package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rcabrera/citywatch/internal/server/services"
)

// maxUploadBytes caps the multipart form size for image submissions.
const maxUploadBytes = 10 << 20

// readImage pulls the optional "image" file out of a multipart form.
// Returns nil data when no file was attached.
func readImage(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}

func (a *API) handleCreateReport(w http.ResponseWriter, r *http.Request) {
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

	report, err := a.reports.Create(r.Context(), &services.CreateReportInput{
		ReportType:       r.FormValue("reportType"),
		Category:         r.FormValue("category"),
		Name:             r.FormValue("name"),
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
		"success": true,
		"message": "report created",
		"report":  report,
	})
}

func (a *API) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := a.reports.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "reports retrieved",
		"reports": reports,
	})
}

func (a *API) handleMyReports(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	reports, err := a.reports.ListBySubmitter(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "reports retrieved",
		"reports": reports,
	})
}

func (a *API) handleRespondedReports(w http.ResponseWriter, r *http.Request) {
	reports, err := a.reports.ListResponded(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "reports retrieved",
		"reports": reports,
	})
}

func (a *API) handleRespondReport(w http.ResponseWriter, r *http.Request) {
	report, err := a.reports.MarkResponded(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "report marked as responded",
		"report":  report,
	})
}

func (a *API) handleArchiveReport(w http.ResponseWriter, r *http.Request) {
	report, err := a.reports.MarkArchived(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "report archived",
		"report":  report,
	})
}

func (a *API) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondBadRequest(w, "invalid report id")
		return
	}

	if err := a.reports.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "report deleted",
	})
}
