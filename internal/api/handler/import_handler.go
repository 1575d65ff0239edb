package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/insightdesk/access-directory/internal/core/ports"
)

// ImportHandler handles bulk CSV imports of purchase exports.
type ImportHandler struct {
	importer ports.Importer
}

func NewImportHandler(importer ports.Importer) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// Import handles POST /v1/imports. Expects a multipart form with the CSV
// under the "file" field.
//
// @Summary      Bulk-import clients from a purchase CSV export
// @Tags         imports
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV with Date, Email, Status, Name columns"
// @Success      200   {object}  ports.ImportReport
// @Failure      400   {object}  map[string]string
// @Router       /v1/imports [post]
func (h *ImportHandler) Import(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing CSV file upload")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable CSV file upload")
	}
	defer f.Close()

	report, err := h.importer.Import(c.Request().Context(), f)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}
