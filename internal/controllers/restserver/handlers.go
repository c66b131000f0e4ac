package restserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chrissnell/evapo/internal/etservice"
	"github.com/chrissnell/evapo/internal/storage"
	"github.com/chrissnell/evapo/pkg/et"
	"github.com/chrissnell/evapo/pkg/responseformat"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// MethodInfo describes one supported method
type MethodInfo struct {
	Name string `json:"name"`
}

// SiteInfo is the public view of a configured site
type SiteInfo struct {
	Name      string  `json:"name"`
	Station   string  `json:"station"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Method    string  `json:"method"`
}

// RunResponse is a computed or stored run
type RunResponse struct {
	ID        string     `json:"id"`
	Site      string     `json:"site"`
	Method    string     `json:"method"`
	CreatedAt time.Time  `json:"created_at"`
	Dates     []string   `json:"dates"`
	ET        []*float64 `json:"et"`
}

// SiteResults are the latest stored values of a site, keyed by method
type SiteResults struct {
	Site    string                `json:"site"`
	From    string                `json:"from"`
	To      string                `json:"to"`
	Methods map[string][]DayValue `json:"methods"`
}

// DayValue is the evapotranspiration of one day
type DayValue struct {
	Date  string   `json:"date"`
	ET    *float64 `json:"et"`
	RunID string   `json:"run_id"`
}

// GetMethods lists the supported methods
func (h *Handlers) GetMethods(w http.ResponseWriter, req *http.Request) {
	methods := make([]MethodInfo, 0, len(et.Methods()))
	for _, m := range et.Methods() {
		methods = append(methods, MethodInfo{Name: m.String()})
	}
	h.write(w, req, methods)
}

// EvaluateMethod evaluates the method in the path over the series in the
// request body
func (h *Handlers) EvaluateMethod(w http.ResponseWriter, req *http.Request) {
	method, err := et.ParseMethod(mux.Vars(req)["method"])
	if err != nil {
		h.writeError(w, req, http.StatusNotFound, err)
		return
	}

	var r etservice.Request
	if err := h.formatter.DecodeRequest(req, &r); err != nil {
		h.writeError(w, req, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := h.controller.service.EvaluateRequest(method, &r)
	if err != nil {
		h.writeError(w, req, 0, err)
		return
	}
	h.write(w, req, res)
}

// GetSites lists the configured sites
func (h *Handlers) GetSites(w http.ResponseWriter, req *http.Request) {
	sites := h.controller.service.Sites()
	out := make([]SiteInfo, 0, len(sites))
	for _, s := range sites {
		out = append(out, SiteInfo{
			Name:      s.Name,
			Station:   s.StationName,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Elevation: s.Elevation,
			Method:    s.Method,
		})
	}
	h.write(w, req, out)
}

// ComputeSite computes a site from its station readings and stores the run.
// The method defaults to the site's own.
func (h *Handlers) ComputeSite(w http.ResponseWriter, req *http.Request) {
	site := mux.Vars(req)["site"]
	from, to, err := dateRange(req)
	if err != nil {
		h.writeError(w, req, http.StatusBadRequest, err)
		return
	}

	var method et.Method
	if name := req.URL.Query().Get("method"); name != "" {
		method, err = et.ParseMethod(name)
		if err != nil {
			h.writeError(w, req, http.StatusBadRequest, err)
			return
		}
	}

	run, err := h.controller.service.Compute(req.Context(), site, method, from, to)
	if err != nil {
		h.writeError(w, req, 0, err)
		return
	}
	h.formatter.WriteStatus(w, req, http.StatusCreated, runResponse(run), nil)
}

// GetSiteResults returns the stored results of a site
func (h *Handlers) GetSiteResults(w http.ResponseWriter, req *http.Request) {
	site := mux.Vars(req)["site"]
	from, to, err := dateRange(req)
	if err != nil {
		h.writeError(w, req, http.StatusBadRequest, err)
		return
	}

	recs, err := h.controller.service.Results(req.Context(), site, from, to)
	if err != nil {
		h.writeError(w, req, 0, err)
		return
	}

	out := SiteResults{
		Site:    site,
		From:    from.Format(time.DateOnly),
		To:      to.Format(time.DateOnly),
		Methods: make(map[string][]DayValue),
	}
	for _, r := range recs {
		out.Methods[r.Method] = append(out.Methods[r.Method], DayValue{
			Date:  r.Day.Format(time.DateOnly),
			ET:    etservice.Nullable([]float64{r.ET})[0],
			RunID: r.RunID.String(),
		})
	}
	h.write(w, req, out)
}

// GetRun returns a stored run
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		h.writeError(w, req, http.StatusBadRequest, fmt.Errorf("invalid run id: %w", err))
		return
	}

	run, err := h.controller.service.Run(req.Context(), id)
	if err != nil {
		h.writeError(w, req, 0, err)
		return
	}
	h.write(w, req, runResponse(run))
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, nil); err != nil {
		h.controller.logger.Errorf("error encoding response: %v", err)
	}
}

// writeError maps err to a status code and error body. A non-zero status
// overrides the mapping.
func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, status int, err error) {
	code, body := errorBody(err)
	if status != 0 {
		code = status
	}
	if code >= http.StatusInternalServerError {
		h.controller.logger.Errorf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	h.formatter.WriteError(w, req, code, body)
}

func errorBody(err error) (int, responseformat.ErrorBody) {
	body := responseformat.ErrorBody{Error: err.Error()}

	var missing *et.MissingInputError
	var domain *et.DomainError
	var shape *et.ShapeMismatchError

	switch {
	case errors.As(err, &missing):
		body.Kind = "missing_input"
		body.Detail = map[string]any{"input": missing.Input, "need": missing.Need}
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &domain):
		body.Kind = "domain"
		body.Detail = map[string]any{"quantity": domain.Quantity, "index": domain.Index, "reason": domain.Reason}
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &shape):
		body.Kind = "shape_mismatch"
		body.Detail = map[string]any{"series": shape.Name, "got": shape.Got, "want": shape.Want}
		return http.StatusBadRequest, body
	case errors.Is(err, etservice.ErrInvalidRequest):
		body.Kind = "invalid_request"
		return http.StatusBadRequest, body
	case errors.Is(err, etservice.ErrUnknownSite), errors.Is(err, storage.ErrRunNotFound):
		body.Kind = "not_found"
		return http.StatusNotFound, body
	case errors.Is(err, etservice.ErrNoData):
		body.Kind = "no_data"
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, etservice.ErrNoSource), errors.Is(err, etservice.ErrNoStore):
		body.Kind = "unavailable"
		return http.StatusServiceUnavailable, body
	}
	return http.StatusInternalServerError, body
}

// dateRange parses the from and to query parameters. to defaults to today and
// from to seven days before to.
func dateRange(req *http.Request) (time.Time, time.Time, error) {
	q := req.URL.Query()

	today := time.Now().UTC()
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %w", err)
		}
		to = t
	}

	from := to.AddDate(0, 0, -7)
	if s := q.Get("from"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %w", err)
		}
		from = t
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from %s is not before to %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return from, to, nil
}

func runResponse(run storage.Run) RunResponse {
	return RunResponse{
		ID:        run.ID.String(),
		Site:      run.Site,
		Method:    run.Method,
		CreatedAt: run.CreatedAt,
		Dates:     etservice.FormatDays(run.Days),
		ET:        etservice.Nullable(run.ET),
	}
}
