package handler

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/insightdesk/access-directory/internal/core/domain"
	"github.com/insightdesk/access-directory/internal/core/ports"
)

type stubDirectoryService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.ClientRecord, error)
	getFn      func(ctx context.Context, id string) (*domain.ClientRecord, error)
	listFn     func(ctx context.Context) ([]*domain.ClientRecord, error)
	editFn     func(ctx context.Context, id string, in ports.EditInput) (*domain.ClientRecord, error)
	resetFn    func(ctx context.Context, id string) error
	detailsFn  func(ctx context.Context, id string) (string, error)
	removeFn   func(ctx context.Context, id string) error
}

func (s *stubDirectoryService) Register(ctx context.Context, in ports.RegisterInput) (*domain.ClientRecord, error) {
	return s.registerFn(ctx, in)
}

func (s *stubDirectoryService) Get(ctx context.Context, id string) (*domain.ClientRecord, error) {
	return s.getFn(ctx, id)
}

func (s *stubDirectoryService) List(ctx context.Context) ([]*domain.ClientRecord, error) {
	return s.listFn(ctx)
}

func (s *stubDirectoryService) Edit(ctx context.Context, id string, in ports.EditInput) (*domain.ClientRecord, error) {
	return s.editFn(ctx, id, in)
}

func (s *stubDirectoryService) ResetLoginStatus(ctx context.Context, id string) error {
	return s.resetFn(ctx, id)
}

func (s *stubDirectoryService) ResetLoginDetails(ctx context.Context, id string) (string, error) {
	return s.detailsFn(ctx, id)
}

func (s *stubDirectoryService) Remove(ctx context.Context, id string) error {
	return s.removeFn(ctx, id)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func sampleRecord() *domain.ClientRecord {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.ClientRecord{
		ID:              "alice",
		Email:           "alice@example.com",
		Permissions:     []string{"dashboard1"},
		ExpiryDate:      "2025-12-31",
		LoginStatus:     domain.LoggedOut,
		CreatedAt:       created,
		AccessGrantedAt: created,
		PurchaseDate:    created,
	}
}

func TestClientHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubDirectoryService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.ClientRecord, error) {
			if in.Email != "alice@example.com" || len(in.Permissions) != 1 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return sampleRecord(), nil
		},
	}
	h := NewClientHandler(stub)

	body := strings.NewReader(`{"email":"alice@example.com","expiry_date":"2025-12-31","permissions":["dashboard1"]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/clients", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" {
		t.Fatalf("expected derived username in response, got %v", resp["username"])
	}
	if resp["login_status"] != "Logged Out" {
		t.Fatalf("expected Logged Out, got %v", resp["login_status"])
	}
}

func TestClientHandler_Register_RejectsEmptyPermissions(t *testing.T) {
	e := newEcho()
	h := NewClientHandler(&stubDirectoryService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.ClientRecord, error) {
			t.Fatal("service must not be called for invalid payloads")
			return nil, nil
		},
	})

	body := strings.NewReader(`{"email":"alice@example.com","expiry_date":"2025-12-31","permissions":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/clients", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestClientHandler_Get_PropagatesNotFound(t *testing.T) {
	e := newEcho()
	h := NewClientHandler(&stubDirectoryService{
		getFn: func(_ context.Context, id string) (*domain.ClientRecord, error) {
			return nil, domain.ErrClientNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/clients/ghost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("ghost")

	// The central error handler maps this to 404; the handler itself only
	// propagates the domain error.
	if err := h.Get(c); err != domain.ErrClientNotFound {
		t.Fatalf("expected domain.ErrClientNotFound, got %v", err)
	}
}

func TestClientHandler_List_MarksExpiredRecords(t *testing.T) {
	e := newEcho()
	expired := sampleRecord()
	expired.ExpiryDate = "2020-01-01"
	h := NewClientHandler(&stubDirectoryService{
		listFn: func(context.Context) ([]*domain.ClientRecord, error) {
			return []*domain.ClientRecord{expired}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	clients := resp["clients"].([]any)
	if len(clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(clients))
	}
	if clients[0].(map[string]any)["expired"] != true {
		t.Fatal("expected expired flag set")
	}
}

func TestClientHandler_ResetPassword_ReturnsGeneratedPassword(t *testing.T) {
	e := newEcho()
	h := NewClientHandler(&stubDirectoryService{
		detailsFn: func(_ context.Context, id string) (string, error) {
			if id != "alice" {
				t.Fatalf("unexpected id %q", id)
			}
			return "s3cr3t!pass", nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/clients/alice/reset-password", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("alice")

	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["password"] != "s3cr3t!pass" {
		t.Fatalf("expected generated password in response, got %q", resp["password"])
	}
}

func TestClientHandler_Remove_NoContent(t *testing.T) {
	e := newEcho()
	h := NewClientHandler(&stubDirectoryService{
		removeFn: func(_ context.Context, id string) error { return nil },
	})

	req := httptest.NewRequest(http.MethodDelete, "/v1/clients/alice", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("alice")

	if err := h.Remove(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Import handler
// ---------------------------------------------------------------------------

type stubImporter struct {
	importFn func(ctx context.Context, r io.Reader) (*ports.ImportReport, error)
}

func (s *stubImporter) Import(ctx context.Context, r io.Reader) (*ports.ImportReport, error) {
	return s.importFn(ctx, r)
}

func multipartCSV(t *testing.T, contents string) (io.Reader, string) {
	t.Helper()
	var buf strings.Builder
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "purchases.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(contents)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return strings.NewReader(buf.String()), w.FormDataContentType()
}

func TestImportHandler_Success(t *testing.T) {
	e := newEcho()
	h := NewImportHandler(&stubImporter{
		importFn: func(_ context.Context, r io.Reader) (*ports.ImportReport, error) {
			data, _ := io.ReadAll(r)
			if !strings.Contains(string(data), "a@x.com") {
				t.Fatalf("uploaded CSV not passed through: %q", data)
			}
			return &ports.ImportReport{
				Imported: []ports.ImportedRow{{Name: "Alice", Email: "a@x.com"}},
			}, nil
		},
	})

	body, contentType := multipartCSV(t, "Date,Email,Status,Name\n04/03/25,a@x.com,Success,Alice\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/imports", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Import(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var report ports.ImportReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(report.Imported) != 1 || report.Imported[0].Email != "a@x.com" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestImportHandler_MissingFile(t *testing.T) {
	e := newEcho()
	h := NewImportHandler(&stubImporter{
		importFn: func(context.Context, io.Reader) (*ports.ImportReport, error) {
			t.Fatal("importer must not run without an upload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/imports", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Import(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
