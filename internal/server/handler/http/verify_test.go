package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/atinyakov/VeriFlow/internal/models"
	"github.com/atinyakov/VeriFlow/internal/repository"
	"github.com/atinyakov/VeriFlow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeVerificationService implements VerificationService for testing.
type fakeVerificationService struct {
	initiateID  string
	initiateErr error
	gotFront    *service.Upload
	gotBack     *service.Upload
	gotSelfie   int64

	statusValue models.Status
	statusErr   error

	account    models.AccountRecord
	accountErr error
}

func (f *fakeVerificationService) Initiate(ctx context.Context, front service.Upload, back *service.Upload, selfieSize int64) (string, error) {
	f.gotFront = &front
	f.gotBack = back
	f.gotSelfie = selfieSize
	return f.initiateID, f.initiateErr
}

func (f *fakeVerificationService) JobStatus(ctx context.Context, id string) (models.Status, error) {
	return f.statusValue, f.statusErr
}

func (f *fakeVerificationService) CreateAccount(ctx context.Context, email, password string) (models.AccountRecord, error) {
	return f.account, f.accountErr
}

type filePart struct {
	field    string
	filename string
	mime     string
	size     int
}

func multipartBody(t *testing.T, parts []filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		h.Set("Content-Type", p.mime)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(bytes.Repeat([]byte("x"), p.size)))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestInitiateHandler(t *testing.T) {
	valid := []filePart{
		{"documentFront", "front.jpg", "image/jpeg", 10},
		{"documentBack", "back.png", "image/png", 10},
		{"selfie", "selfie.jpg", "image/jpeg", 20},
	}

	tests := []struct {
		name           string
		parts          []filePart
		service        *fakeVerificationService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "success",
			parts:          valid,
			service:        &fakeVerificationService{initiateID: "abc-123"},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"verificationId":"abc-123"`,
		},
		{
			name: "missing front",
			parts: []filePart{
				{"selfie", "selfie.jpg", "image/jpeg", 20},
			},
			service:        &fakeVerificationService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "documentFront is required",
		},
		{
			name: "missing selfie",
			parts: []filePart{
				{"documentFront", "front.jpg", "image/jpeg", 10},
			},
			service:        &fakeVerificationService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "selfie is required",
		},
		{
			name: "bad mime type",
			parts: []filePart{
				{"documentFront", "front.gif", "image/gif", 10},
				{"selfie", "selfie.jpg", "image/jpeg", 20},
			},
			service:        &fakeVerificationService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid file type for documentFront",
		},
		{
			name: "oversized front",
			parts: []filePart{
				{"documentFront", "big.png", "image/png", 11 << 20},
				{"selfie", "selfie.jpg", "image/jpeg", 20},
			},
			service:        &fakeVerificationService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "documentFront exceeds the 10MB limit",
		},
		{
			name:           "service failure",
			parts:          valid,
			service:        &fakeVerificationService{initiateErr: errors.New("db down")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "failed to create verification",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.parts)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/initiate", body)
			req.Header.Set("Content-Type", contentType)

			h := &VerificationHandler{Service: tt.service}
			h.Initiate(rec, req)

			res := rec.Result()
			defer res.Body.Close()
			require.Equal(t, tt.expectedCode, res.StatusCode)

			raw, err := io.ReadAll(res.Body)
			require.NoError(t, err)
			assert.Contains(t, string(raw), tt.expectedSubstr)
		})
	}
}

func TestInitiateHandlerForwardsUploads(t *testing.T) {
	svc := &fakeVerificationService{initiateID: "id"}
	body, contentType := multipartBody(t, []filePart{
		{"documentFront", "front.jpg", "image/jpeg", 10},
		{"documentBack", "back.png", "image/png", 12},
		{"selfie", "selfie.jpg", "image/jpeg", 20},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/initiate", body)
	req.Header.Set("Content-Type", contentType)

	h := &VerificationHandler{Service: svc}
	h.Initiate(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, svc.gotFront)
	assert.Equal(t, "front.jpg", svc.gotFront.Name)
	assert.Equal(t, int64(10), svc.gotFront.Size)
	require.NotNil(t, svc.gotBack)
	assert.Equal(t, "back.png", svc.gotBack.Name)
	assert.Equal(t, int64(20), svc.gotSelfie)
}

func TestInitiateHandlerBackIsOptional(t *testing.T) {
	svc := &fakeVerificationService{initiateID: "id"}
	body, contentType := multipartBody(t, []filePart{
		{"documentFront", "front.jpg", "image/jpeg", 10},
		{"selfie", "selfie.jpg", "image/jpeg", 20},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/initiate", body)
	req.Header.Set("Content-Type", contentType)

	h := &VerificationHandler{Service: svc}
	h.Initiate(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, svc.gotBack)
}

func TestStatusHandler(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		service        *fakeVerificationService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "found",
			id:             "abc-123",
			service:        &fakeVerificationService{statusValue: models.StatusApproved},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"status":"APPROVED"`,
		},
		{
			name:           "not found",
			id:             "missing",
			service:        &fakeVerificationService{statusErr: repository.ErrNotFound},
			expectedCode:   http.StatusNotFound,
			expectedSubstr: "verification not found",
		},
		{
			name:           "internal error",
			id:             "abc-123",
			service:        &fakeVerificationService{statusErr: errors.New("db down")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "failed to fetch status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&VerificationHandler{Service: tt.service}, zap.NewNop())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/verify/status/"+tt.id, nil)
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.expectedCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedSubstr)
		})
	}
}

func TestCreateAccountHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeVerificationService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"email":"a@b.co","password":"longenough"}`,
			service:        &fakeVerificationService{account: models.AccountRecord{Email: "a@b.co"}},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"email":"a@b.co"`,
		},
		{
			name:           "invalid JSON",
			body:           `not json`,
			service:        &fakeVerificationService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request body",
		},
		{
			name:           "bad email",
			body:           `{"email":"nope","password":"longenough"}`,
			service:        &fakeVerificationService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid email address",
		},
		{
			name:           "short password",
			body:           `{"email":"a@b.co","password":"abc123"}`,
			service:        &fakeVerificationService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "password must be at least 8 characters",
		},
		{
			name:           "duplicate email",
			body:           `{"email":"a@b.co","password":"longenough"}`,
			service:        &fakeVerificationService{accountErr: repository.ErrDuplicateEmail},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "Email already exists",
		},
		{
			name:           "service failure",
			body:           `{"email":"a@b.co","password":"longenough"}`,
			service:        &fakeVerificationService{accountErr: errors.New("db down")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "failed to create account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/create-account", strings.NewReader(tt.body))

			h := &VerificationHandler{Service: tt.service}
			h.CreateAccount(rec, req)

			require.Equal(t, tt.expectedCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedSubstr)
		})
	}
}

func TestRouterRejectsNonJSONAccountRequests(t *testing.T) {
	router := NewRouter(&VerificationHandler{Service: &fakeVerificationService{}}, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/verify/create-account", strings.NewReader("email=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestErrorBodiesUseMessageShape(t *testing.T) {
	router := NewRouter(&VerificationHandler{Service: &fakeVerificationService{statusErr: repository.ErrNotFound}}, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/verify/status/nope", nil)
	router.ServeHTTP(rec, req)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload["message"])
}
