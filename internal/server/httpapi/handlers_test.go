package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rcabrera/citywatch/internal/logging"
	"github.com/rcabrera/citywatch/internal/server/broadcast"
	"github.com/rcabrera/citywatch/internal/server/config"
	"github.com/rcabrera/citywatch/internal/server/mail"
	"github.com/rcabrera/citywatch/internal/server/objectstore"
	"github.com/rcabrera/citywatch/internal/server/repositories/repomanager"
	"github.com/rcabrera/citywatch/internal/server/sequence"
	"github.com/rcabrera/citywatch/internal/server/services"
)

type testEnv struct {
	api     *API
	handler http.Handler
	hub     *broadcast.Hub
	mailer  *mail.MemoryMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
		OutboundTimeout:       time.Second,
		SMTPFrom:              "noreply@test.local",
		AdminEmail:            "admin@test.local",
	}

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rm := repomanager.NewMemoryRepositoryManager()
	allocator := sequence.NewAllocator(rm.Counters(nil))
	store := objectstore.NewMemoryStore()
	mailer := mail.NewMemoryMailer()
	hub := broadcast.NewHub()

	userSvc := services.NewUserService(nil, rm, allocator, mailer, log, cfg)
	adminSvc := services.NewAdminService(nil, rm, log, cfg)
	reportSvc := services.NewReportService(nil, rm, allocator, store, mailer, log, cfg)
	emergencySvc := services.NewEmergencyService(nil, rm, allocator, store, mailer, hub, log, cfg)
	postSvc := services.NewPostService(nil, rm, log)

	api := New(userSvc, adminSvc, reportSvc, emergencySvc, postSvc, hub, log, cfg)
	return &testEnv{api: api, handler: api.Routes(), hub: hub, mailer: mailer}
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
	return body
}

func (e *testEnv) registerUser(t *testing.T, email string) string {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"lastname":   "Reyes",
		"firstname":  "Maria",
		"middlename": "Santos",
		"houseno":    "12",
		"barangay":   "San Isidro",
		"birthday":   "1995-06-01",
		"gender":     "female",
		"number":     "09171234567",
		"email":      email,
		"password":   "hunter22",
		"imageid":    "id-document.jpg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: want 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)["token"].(string)
}

func (e *testEnv) registerAdmin(t *testing.T, email string) string {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/v1/admin/register", "", map[string]string{
		"username": "mod", "email": email, "password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin register: want 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.doJSON(t, http.MethodPost, "/api/v1/admin/login", "", map[string]string{
		"email": email, "password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)["token"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"lastname":   "Reyes",
		"firstname":  "Maria",
		"middlename": "Santos",
		"houseno":    "12",
		"barangay":   "San Isidro",
		"birthday":   "1995-06-01",
		"gender":     "female",
		"number":     "09171234567",
		"email":      "maria@example.com",
		"password":   "hunter22",
		"imageid":    "id-document.jpg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	userID := user["userId"].(string)
	wantPrefix := fmt.Sprintf("%d-", time.Now().Year())
	if !strings.HasPrefix(userID, wantPrefix) {
		t.Errorf("userId %q must start with %q", userID, wantPrefix)
	}
	if _, ok := user["PasswordHash"]; ok {
		t.Error("password hash must never be serialized")
	}

	// duplicate email
	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"lastname":   "Reyes",
		"firstname":  "Maria",
		"middlename": "Santos",
		"houseno":    "12",
		"barangay":   "San Isidro",
		"birthday":   "1995-06-01",
		"gender":     "female",
		"number":     "09171234567",
		"email":      "maria@example.com",
		"password":   "hunter22",
		"imageid":    "id-document.jpg",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate email: want 409, got %d", rec.Code)
	}

	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "maria@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: want 401, got %d", rec.Code)
	}
}

func TestRegister_ValidationEnvelope(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"number": "123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Error("success must be false")
	}
	fields, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected per-field errors, got %v", body)
	}
	if _, ok := fields["number"]; !ok {
		t.Errorf("expected number error, got %v", fields)
	}
	if _, ok := fields["email"]; !ok {
		t.Errorf("expected email error, got %v", fields)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/api/v1/report/my-reports", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: want 401, got %d", rec.Code)
	}

	rec = env.doJSON(t, http.MethodGet, "/api/v1/report/my-reports", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: want 401, got %d", rec.Code)
	}
}

func TestAdminRoutesRejectResidentTokens(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.registerUser(t, "maria@example.com")

	rec := env.doJSON(t, http.MethodPut, "/api/v1/report/001/respond", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("resident on admin route: want 403, got %d", rec.Code)
	}

	rec = env.doJSON(t, http.MethodGet, "/api/v1/auth/users", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("resident listing users: want 403, got %d", rec.Code)
	}
}

func (e *testEnv) createReport(t *testing.T, token string, withImage bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"reportType": "incident",
		"category":   "road damage",
		"name":       "Juan Dela Cruz",
		"location":   "Main St",
		"comment":    "large pothole",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("writing field: %v", err)
		}
	}
	if withImage {
		part, err := mw.CreateFormFile("image", "photo.jpg")
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := part.Write([]byte{0xFF, 0xD8, 0xFF}); err != nil {
			t.Fatalf("writing image: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/report/create-report", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateReport_Multipart(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "maria@example.com")

	rec := env.createReport(t, token, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", rec.Code, rec.Body.String())
	}
	report := decodeBody(t, rec)["report"].(map[string]any)
	if report["reportId"] != "001" {
		t.Errorf("want reportId 001, got %v", report["reportId"])
	}
	if img, ok := report["image"].(string); !ok || img == "" {
		t.Errorf("expected an image URL, got %v", report["image"])
	}

	rec = env.createReport(t, token, false)
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", rec.Code, rec.Body.String())
	}
	second := decodeBody(t, rec)["report"].(map[string]any)
	if second["reportId"] != "002" {
		t.Errorf("want reportId 002, got %v", second["reportId"])
	}
	if _, ok := second["image"]; ok {
		t.Error("image must be omitted when no file was attached")
	}
}

func TestReportAdminLifecycle(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.registerUser(t, "maria@example.com")
	adminToken := env.registerAdmin(t, "mod@example.com")

	if rec := env.createReport(t, userToken, false); rec.Code != http.StatusCreated {
		t.Fatalf("create report: want 201, got %d", rec.Code)
	}

	rec := env.doJSON(t, http.MethodPut, "/api/v1/report/001/respond", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("respond: want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	report := decodeBody(t, rec)["report"].(map[string]any)
	if report["responded"] != true {
		t.Error("responded flag not set")
	}

	rec = env.doJSON(t, http.MethodPut, "/api/v1/report/001/archive", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("archive: want 200, got %d", rec.Code)
	}

	rec = env.doJSON(t, http.MethodPut, "/api/v1/report/999/respond", adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: want 404, got %d", rec.Code)
	}

	rec = env.doJSON(t, http.MethodGet, "/api/v1/report/responded", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("responded list: want 200, got %d", rec.Code)
	}
	reports := decodeBody(t, rec)["reports"].([]any)
	if len(reports) != 1 {
		t.Errorf("want 1 responded report, got %d", len(reports))
	}

	rec = env.doJSON(t, http.MethodDelete, "/api/v1/report/1", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: want 200, got %d", rec.Code)
	}
	// idempotent
	rec = env.doJSON(t, http.MethodDelete, "/api/v1/report/1", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("second delete: want 200, got %d", rec.Code)
	}
	rec = env.doJSON(t, http.MethodDelete, "/api/v1/report/nope", adminToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: want 400, got %d", rec.Code)
	}
}

func TestPosts(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "maria@example.com")

	rec := env.doJSON(t, http.MethodPost, "/api/v1/post/create-post", token, map[string]string{
		"title": "Road closure", "description": "5th Ave closed until Friday",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.doJSON(t, http.MethodGet, "/api/v1/post/get-all-post", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	posts := decodeBody(t, rec)["posts"].([]any)
	if len(posts) != 1 {
		t.Errorf("want 1 post, got %d", len(posts))
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "maria@example.com")

	rec := env.doJSON(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "maria@example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot-password: want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	sent := env.mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("want 1 reset email, got %d", len(sent))
	}
	// the code is the last hex token in the body
	words := strings.Fields(sent[0].Text)
	var token string
	for _, wrd := range words {
		trimmed := strings.TrimSuffix(wrd, ".")
		if len(trimmed) == 6 && strings.IndexFunc(trimmed, func(r rune) bool {
			return !strings.ContainsRune("0123456789abcdef", r)
		}) == -1 {
			token = trimmed
		}
	}
	if token == "" {
		t.Fatalf("no reset code found in %q", sent[0].Text)
	}

	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{
		"token": token, "password": "newpassword",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reset-password: want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "maria@example.com", "password": "newpassword",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password: want 200, got %d", rec.Code)
	}

	rec = env.doJSON(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{
		"token": token, "password": "another",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reused code: want 400, got %d", rec.Code)
	}
}

func TestEventsStream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connecting to event stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)

	// the stream opens with a comment once the subscription is live
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading greeting: %v", err)
	}
	if !strings.HasPrefix(line, ":") {
		t.Fatalf("expected comment line, got %q", line)
	}

	env.hub.Publish("new-emergency", map[string]string{"emergencyId": "001"})

	var sawEvent, sawData bool
	for !sawEvent || !sawData {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		if strings.HasPrefix(line, "event: new-emergency") {
			sawEvent = true
		}
		if strings.HasPrefix(line, "data: ") && strings.Contains(line, "001") {
			sawData = true
		}
	}
}
