package patient

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/surgprep/surgprep/internal/platform/web"
)

// Workspace is the per-session state the handlers operate on.
type Workspace interface {
	Patients() *Registry
	ShowAddForm() bool
	ToggleAddForm()
	HideAddForm()
	SetFlash(msg string)
	PopFlash() string
}

// WorkspaceFunc resolves the caller's workspace from the request.
type WorkspaceFunc func(c echo.Context) (Workspace, error)

type Handler struct {
	svc       *Service
	workspace WorkspaceFunc
}

func NewHandler(svc *Service, workspace WorkspaceFunc) *Handler {
	return &Handler{svc: svc, workspace: workspace}
}

func (h *Handler) RegisterRoutes(ui *echo.Group, api *echo.Group) {
	ui.GET("/patients", h.ListPage)
	ui.POST("/patients", h.SubmitForm)
	ui.POST("/patients/form", h.ToggleForm)

	api.GET("/patients", h.List)
	api.POST("/patients", h.Create)
}

type listView struct {
	Patients     []Ranked
	ShowForm     bool
	Form         Form
	Errors       FieldErrors
	Today        string
	LatestDate   string
	SurgeryTypes []SurgeryType
}

func (h *Handler) render(c echo.Context, ws Workspace, status int, form Form, errs FieldErrors) error {
	today := h.svc.Today()
	view := listView{
		Patients:     h.svc.List(c.Request().Context(), ws.Patients(), today),
		ShowForm:     ws.ShowAddForm(),
		Form:         form,
		Errors:       errs,
		Today:        today.Format(DateLayout),
		LatestDate:   today.AddDate(MaxYearsAhead, 0, 0).Format(DateLayout),
		SurgeryTypes: SurgeryTypes,
	}
	if view.Form.SurgeryDate == "" {
		view.Form.SurgeryDate = view.Today
	}
	if view.Form.LastContacted == "" {
		view.Form.LastContacted = view.Today
	}
	return c.Render(status, web.PagePatients, web.Page{
		Title: "Patients",
		Tab:   "patients",
		Flash: ws.PopFlash(),
		Body:  view,
	})
}

// -- HTML Handlers --

func (h *Handler) ListPage(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	return h.render(c, ws, http.StatusOK, Form{}, nil)
}

func (h *Handler) ToggleForm(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	ws.ToggleAddForm()
	return c.Redirect(http.StatusSeeOther, "/patients")
}

// SubmitForm handles the add-patient form. An empty name is ignored
// without any message, as staff expect from the form.
func (h *Handler) SubmitForm(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	var f Form
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res := h.svc.Submit(c.Request().Context(), ws.Patients(), f, h.svc.Today())
	switch res.Outcome {
	case OutcomeAdded:
		ws.HideAddForm()
		ws.SetFlash("Added patient " + res.Record.Name)
		return c.Redirect(http.StatusSeeOther, "/patients")
	case OutcomeRejectedInvalid:
		return h.render(c, ws, http.StatusUnprocessableEntity, f, res.Errors)
	default:
		return h.render(c, ws, http.StatusOK, f, nil)
	}
}

// -- JSON Handlers --

type listResponse struct {
	Today    string   `json:"today"`
	Total    int      `json:"total"`
	Patients []Ranked `json:"patients"`
}

func (h *Handler) List(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	today := h.svc.Today()
	items := h.svc.List(c.Request().Context(), ws.Patients(), today)
	return c.JSON(http.StatusOK, listResponse{
		Today:    today.Format(DateLayout),
		Total:    len(items),
		Patients: items,
	})
}

// createRequest is the JSON form of an add-patient submission.
type createRequest struct {
	Name          string  `json:"name"`
	Age           int     `json:"age"`
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	Contact       string  `json:"contact"`
	SurgeryType   string  `json:"surgery_type"`
	SurgeryDate   string  `json:"surgery_date"`
	LastContacted string  `json:"last_contacted"`
}

func (r createRequest) form() Form {
	return Form{
		Name:          r.Name,
		Age:           strconv.Itoa(r.Age),
		Weight:        strconv.FormatFloat(r.WeightKg, 'f', -1, 64),
		Height:        strconv.FormatFloat(r.HeightCm, 'f', -1, 64),
		Contact:       r.Contact,
		SurgeryType:   r.SurgeryType,
		SurgeryDate:   r.SurgeryDate,
		LastContacted: r.LastContacted,
	}
}

func (h *Handler) Create(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res := h.svc.Submit(c.Request().Context(), ws.Patients(), req.form(), h.svc.Today())
	switch res.Outcome {
	case OutcomeAdded:
		return c.JSON(http.StatusCreated, res)
	case OutcomeRejectedInvalid:
		return c.JSON(http.StatusUnprocessableEntity, res)
	default:
		return c.JSON(http.StatusOK, res)
	}
}
