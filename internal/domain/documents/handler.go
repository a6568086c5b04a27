package documents

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/surgprep/surgprep/internal/platform/web"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(ui *echo.Group, api *echo.Group) {
	ui.GET("/documents", h.UploadPage)
	ui.POST("/documents", h.UploadForm)

	api.POST("/documents", h.Upload)
}

type pageView struct {
	Result *Result
	Error  string
}

func (h *Handler) renderPage(c echo.Context, status int, view pageView) error {
	return c.Render(status, web.PageDocuments, web.Page{
		Title: "Documents",
		Tab:   "documents",
		Body:  view,
	})
}

// statusFor maps ingestion errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrExtractFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal error detail from unexpected failures.
func publicMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "document could not be processed"
	}
	for _, known := range []error{ErrMissingFile, ErrNotPDF, ErrFileTooLarge, ErrExtractFailed} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}

func (h *Handler) ingest(c echo.Context) (*Result, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, h.svc.Reject(ErrMissingFile)
	}
	if fh.Size > h.svc.MaxSize() {
		return nil, h.svc.Reject(ErrFileTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, h.svc.Reject(fmt.Errorf("%w: %v", ErrMissingFile, err))
	}
	defer f.Close()
	return h.svc.Ingest(c.Request().Context(), fh.Filename, fh.Header.Get(echo.HeaderContentType), f)
}

// -- HTML Handlers --

func (h *Handler) UploadPage(c echo.Context) error {
	return h.renderPage(c, http.StatusOK, pageView{})
}

func (h *Handler) UploadForm(c echo.Context) error {
	res, err := h.ingest(c)
	if err != nil {
		return h.renderPage(c, statusFor(err), pageView{Error: publicMessage(err)})
	}
	return h.renderPage(c, http.StatusOK, pageView{Result: res})
}

// -- JSON Handlers --

func (h *Handler) Upload(c echo.Context) error {
	res, err := h.ingest(c)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), publicMessage(err))
	}
	return c.JSON(http.StatusOK, res)
}
