package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"dashboards/internal/dashboard"
	"dashboards/internal/models"

	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TableHandler serves the generic table viewer.
type TableHandler struct {
	table *dashboard.Table
}

func NewTableHandler(t *dashboard.Table) *TableHandler {
	return &TableHandler{table: t}
}

func (h *TableHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/table")
	api.GET("", h.GetTable)
	api.GET("/columns", h.GetColumns)
	api.GET("/export.xlsx", h.ExportXLSX)
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// selectedColumns reads repeated ?columns= parameters in order.
func selectedColumns(c echo.Context) []string {
	return c.QueryParams()["columns"]
}

// returns every column and the initial selection
func (h *TableHandler) GetColumns(c echo.Context) error {
	return c.JSON(http.StatusOK, h.table.Columns())
}

// returns one page of the selected columns
func (h *TableHandler) GetTable(c echo.Context) error {
	limit, offset := getPaginationParams(c, h.table.Dataset().Rows())
	state := models.TableState{Columns: selectedColumns(c), Offset: offset, Limit: limit}

	tag := etag(h.table.Dataset(), "table:"+strings.Join(state.Columns, "\x00")+":"+strconv.Itoa(offset)+":"+strconv.Itoa(limit))
	if notModified(c, tag) {
		return c.NoContent(http.StatusNotModified)
	}

	view, err := h.table.Render(state)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// downloads the selected columns as a spreadsheet
func (h *TableHandler) ExportXLSX(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.table.Export(selectedColumns(c), &buf); err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="table.xlsx"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
