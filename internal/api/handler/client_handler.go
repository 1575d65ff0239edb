package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/insightdesk/access-directory/internal/core/domain"
	"github.com/insightdesk/access-directory/internal/core/ports"
)

// ClientHandler handles HTTP requests for directory operations.
type ClientHandler struct {
	service ports.DirectoryService
	now     func() time.Time
}

func NewClientHandler(service ports.DirectoryService) *ClientHandler {
	return &ClientHandler{service: service, now: time.Now}
}

// --- Request / Response types ---

type registerClientRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	ExpiryDate  string   `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type editClientRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	ExpiryDate  string   `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type editLogResponse struct {
	Timestamp string   `json:"timestamp"`
	Changes   []string `json:"changes"`
}

type clientResponse struct {
	Username        string           `json:"username"`
	Email           string           `json:"email"`
	Name            string           `json:"name,omitempty"`
	Password        string           `json:"password"`
	Permissions     []string         `json:"permissions"`
	ExpiryDate      string           `json:"expiry_date"`
	Expired         bool             `json:"expired"`
	LoginStatus     string           `json:"login_status"`
	CreatedAt       string           `json:"created_at"`
	AccessGrantedAt string           `json:"access_granted_at"`
	PurchaseDate    string           `json:"purchase_date"`
	LastUpdated     string           `json:"last_updated,omitempty"`
	LastChange      *editLogResponse `json:"last_change,omitempty"`
}

type listClientsResponse struct {
	Clients []clientResponse `json:"clients"`
	Total   int              `json:"total"`
}

type resetPasswordResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

const timestampLayout = "2006-01-02T15:04:05Z"

func (h *ClientHandler) toResponse(record *domain.ClientRecord) clientResponse {
	resp := clientResponse{
		Username:        record.ID,
		Email:           record.Email,
		Name:            record.Name,
		Password:        record.Password,
		Permissions:     record.Permissions,
		ExpiryDate:      record.ExpiryDate,
		Expired:         record.Expired(h.now()),
		LoginStatus:     record.LoginStatus.String(),
		CreatedAt:       record.CreatedAt.UTC().Format(timestampLayout),
		AccessGrantedAt: record.AccessGrantedAt.UTC().Format(timestampLayout),
		PurchaseDate:    record.PurchaseDate.UTC().Format(timestampLayout),
	}
	if !record.LastUpdated.IsZero() {
		resp.LastUpdated = record.LastUpdated.UTC().Format(timestampLayout)
	}
	if last := record.LastChange(); last != nil {
		resp.LastChange = &editLogResponse{
			Timestamp: last.Timestamp.UTC().Format(timestampLayout),
			Changes:   last.Changes,
		}
	}
	return resp
}

// Register handles POST /v1/clients.
//
// @Summary      Register a client for dashboard access
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      registerClientRequest  true  "Client details"
// @Success      201   {object}  clientResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/clients [post]
func (h *ClientHandler) Register(c echo.Context) error {
	var req registerClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	record, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Email:       req.Email,
		ExpiryDate:  req.ExpiryDate,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, h.toResponse(record))
}

// List handles GET /v1/clients. Records come back in the store's canonical
// order: most recently granted first, then email.
//
// @Summary      List all clients
// @Tags         clients
// @Produce      json
// @Success      200  {object}  listClientsResponse
// @Router       /v1/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	records, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	clients := make([]clientResponse, 0, len(records))
	for _, record := range records {
		clients = append(clients, h.toResponse(record))
	}
	return c.JSON(http.StatusOK, listClientsResponse{Clients: clients, Total: len(clients)})
}

// Get handles GET /v1/clients/:username.
//
// @Summary      Get a client by username
// @Tags         clients
// @Produce      json
// @Param        username  path      string  true  "Client username (email local-part)"
// @Success      200       {object}  clientResponse
// @Failure      404       {object}  map[string]string
// @Router       /v1/clients/{username} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	record, err := h.service.Get(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(record))
}

// Edit handles PUT /v1/clients/:username.
//
// @Summary      Edit a client's email, expiry date, or permissions
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        username  path      string             true  "Client username"
// @Param        body      body      editClientRequest  true  "Replacement field values"
// @Success      200       {object}  clientResponse
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /v1/clients/{username} [put]
func (h *ClientHandler) Edit(c echo.Context) error {
	var req editClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	record, err := h.service.Edit(c.Request().Context(), c.Param("username"), ports.EditInput{
		Email:       req.Email,
		ExpiryDate:  req.ExpiryDate,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.toResponse(record))
}

// ResetStatus handles POST /v1/clients/:username/reset-status.
//
// @Summary      Force a client logged out
// @Tags         clients
// @Produce      json
// @Param        username  path      string  true  "Client username"
// @Success      200       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /v1/clients/{username}/reset-status [post]
func (h *ClientHandler) ResetStatus(c echo.Context) error {
	username := c.Param("username")
	if err := h.service.ResetLoginStatus(c.Request().Context(), username); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"username":     username,
		"login_status": domain.LoggedOut.String(),
	})
}

// ResetPassword handles POST /v1/clients/:username/reset-password. The
// generated password appears in this response and nowhere else.
//
// @Summary      Issue a new random password and force the client logged out
// @Tags         clients
// @Produce      json
// @Param        username  path      string  true  "Client username"
// @Success      200       {object}  resetPasswordResponse
// @Failure      404       {object}  map[string]string
// @Router       /v1/clients/{username}/reset-password [post]
func (h *ClientHandler) ResetPassword(c echo.Context) error {
	username := c.Param("username")
	password, err := h.service.ResetLoginDetails(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resetPasswordResponse{Username: username, Password: password})
}

// Remove handles DELETE /v1/clients/:username.
//
// @Summary      Remove a client
// @Tags         clients
// @Param        username  path  string  true  "Client username"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/clients/{username} [delete]
func (h *ClientHandler) Remove(c echo.Context) error {
	if err := h.service.Remove(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
