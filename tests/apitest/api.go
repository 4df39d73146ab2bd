// Package apitest runs the full router over an in-memory database for HTTP-level tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/routes"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/kendall-kelly/printshop-api/tests/testutil"
)

// API is a router wired to a private database, mock object storage and the real inbox
type API struct {
	Router  *gin.Engine
	DB      *gorm.DB
	Objects *services.MockObjectStore
	Config  *config.Config
}

// Response is the decoded envelope of an API response
type Response struct {
	Code    int             `json:"-"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// New installs a fresh database, configuration and artwork storage for the test
func New(t *testing.T) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	config.SetDB(db)

	cfg := &config.Config{
		GoEnv:                 "test",
		StorageBackend:        config.StorageS3,
		UploadTimeout:         5 * time.Second,
		TaxRate:               decimal.RequireFromString("0.08"),
		ShippingFlatRate:      decimal.RequireFromString("9.95"),
		FreeShippingThreshold: decimal.RequireFromString("150"),
		CORSAllowedOrigins:    []string{"http://localhost:3000"},
	}
	config.SetConfig(cfg)

	objects := services.NewMockObjectStore()
	objects.SetAsMockForTesting()
	services.SetNotifier(nil)

	t.Cleanup(func() {
		config.SetConfig(nil)
		services.SetArtworkStorage(nil)
	})

	return &API{
		Router:  routes.SetupRouter(cfg, testutil.MockAuthMiddleware()),
		DB:      db,
		Objects: objects,
		Config:  cfg,
	}
}

// Do sends a request as auth0ID (anonymous when empty) and decodes the envelope
func (a *API) Do(t *testing.T, method, path, auth0ID string, body io.Reader, contentType string) Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth0ID != "" {
		req.Header.Set("Authorization", "Bearer "+auth0ID)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	resp := Response{Code: w.Code}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: response is not JSON (%d): %s", method, path, w.Code, w.Body.String())
	}
	resp.Code = w.Code
	return resp
}

// JSON sends body encoded as JSON
func (a *API) JSON(t *testing.T, method, path, auth0ID string, body interface{}) Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	return a.Do(t, method, path, auth0ID, reader, "application/json")
}

// Upload posts content as the multipart "file" part, plus any extra form fields
func (a *API) Upload(t *testing.T, path, auth0ID, filename string, content []byte, fields map[string]string) Response {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("Failed to write form field: %v", err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close form: %v", err)
	}

	return a.Do(t, http.MethodPost, path, auth0ID, body, writer.FormDataContentType())
}

// Decode unmarshals the data field of resp into v
func (r Response) Decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("Failed to decode response data: %v (%s)", err, string(r.Data))
	}
}
