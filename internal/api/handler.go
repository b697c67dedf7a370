package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stakingfetcher/internal/coordinator"
	"stakingfetcher/internal/fetcher"
	"stakingfetcher/internal/logger"
	"stakingfetcher/internal/middleware"
	"stakingfetcher/internal/service"
	"stakingfetcher/internal/stakingrewards"
	"stakingfetcher/internal/table"
)

// Defaults pre-fill the form and complete partial requests.
type Defaults struct {
	Slugs        string
	Metrics      string
	LookbackDays int
	CSVFilename  string
}

// Handler serves the form, the result page and the JSON/CSV/SSE endpoints.
type Handler struct {
	svc      service.HistoryService
	defaults Defaults
	now      func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(svc service.HistoryService, defaults Defaults) *Handler {
	if defaults.CSVFilename == "" {
		defaults.CSVFilename = table.DefaultFilename
	}
	return &Handler{svc: svc, defaults: defaults, now: time.Now}
}

// page is the view model of index.html.
type page struct {
	Slugs   string
	Metrics string
	Start   string
	End     string
	Error   string

	HasTable bool
	Header   []string
	Rows     [][]string
	Link     template.HTML
}

// Index handles GET / with the default form.
func (h *Handler) Index(c *gin.Context) {
	start, end := h.defaultRange()
	c.HTML(http.StatusOK, "index.html", page{
		Slugs:   h.defaults.Slugs,
		Metrics: h.defaults.Metrics,
		Start:   start.Format(fetcher.DateLayout),
		End:     end.Format(fetcher.DateLayout),
	})
}

// SubmitForm handles POST /history from the HTML form and renders the
// table with an inline CSV download link.
func (h *Handler) SubmitForm(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderFormError(c, http.StatusBadRequest, req, "invalid form submission")
		return
	}

	q, err := h.query(req)
	if err != nil {
		h.renderFormError(c, http.StatusBadRequest, req, err.Error())
		return
	}

	t, err := h.svc.Fetch(c.Request.Context(), req.APIKey, q, h.logProgress(c))
	if err != nil {
		h.renderFormError(c, statusFor(err), req, messageFor(err))
		return
	}

	link, err := t.DownloadLink(table.DefaultLinkTitle, h.defaults.CSVFilename)
	if err != nil {
		h.renderFormError(c, http.StatusInternalServerError, req, "could not encode CSV")
		return
	}

	records := t.Records()
	c.HTML(http.StatusOK, "index.html", page{
		Slugs:    req.Slugs,
		Metrics:  req.Metrics,
		Start:    q.Start.Format(fetcher.DateLayout),
		End:      q.End.Format(fetcher.DateLayout),
		HasTable: true,
		Header:   records[0],
		Rows:     records[1:],
		Link:     template.HTML(link),
	})
}

// GetHistory handles POST /api/v1/history and returns the table as JSON.
func (h *Handler) GetHistory(c *gin.Context) {
	t, ok := h.runJSON(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NewTableResponse(t))
}

// GetHistoryCSV handles POST /api/v1/history.csv and returns the table as
// a CSV attachment.
func (h *Handler) GetHistoryCSV(c *gin.Context) {
	t, ok := h.runJSON(c)
	if !ok {
		return
	}
	b, err := t.CSV()
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse("could not encode CSV", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.defaults.CSVFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", b)
}

// StreamHistory handles POST /api/v1/history/stream. It emits one
// "progress" event per fetched day, then a "table" or an "error" event.
func (h *Handler) StreamHistory(c *gin.Context) {
	req, q, ok := h.bindJSON(c)
	if !ok {
		return
	}

	sink := coordinator.ProgressFunc(func(p coordinator.Progress) {
		c.SSEvent("progress", ProgressEvent{Done: p.Done, Total: p.Total, Fraction: p.Fraction()})
		c.Writer.Flush()
	})

	t, err := h.svc.Fetch(c.Request.Context(), req.APIKey, q, sink)
	if err != nil {
		c.SSEvent("error", NewErrorResponse(messageFor(err), err))
		return
	}
	c.SSEvent("table", NewTableResponse(t))
}

func (h *Handler) runJSON(c *gin.Context) (*table.Table, bool) {
	req, q, ok := h.bindJSON(c)
	if !ok {
		return nil, false
	}

	t, err := h.svc.Fetch(c.Request.Context(), req.APIKey, q, h.logProgress(c))
	if err != nil {
		c.JSON(statusFor(err), NewErrorResponse(messageFor(err), err))
		return nil, false
	}
	return t, true
}

func (h *Handler) bindJSON(c *gin.Context) (HistoryRequest, fetcher.Query, bool) {
	var req HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid request body", err))
		return req, fetcher.Query{}, false
	}
	req.APIKey = c.GetHeader(stakingrewards.APIKeyHeader)

	q, err := h.query(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid request", err))
		return req, fetcher.Query{}, false
	}
	return req, q, true
}

// query fills defaults and parses dates. Lists are split, never validated.
func (h *Handler) query(req HistoryRequest) (fetcher.Query, error) {
	start, end := h.defaultRange()
	if req.Slugs == "" {
		req.Slugs = h.defaults.Slugs
	}
	if req.Metrics == "" {
		req.Metrics = h.defaults.Metrics
	}

	var err error
	if req.Start != "" {
		if start, err = fetcher.ParseDay(req.Start); err != nil {
			return fetcher.Query{}, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", req.Start)
		}
	}
	if req.End != "" {
		if end, err = fetcher.ParseDay(req.End); err != nil {
			return fetcher.Query{}, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", req.End)
		}
	}

	return fetcher.NewQuery(req.Slugs, req.Metrics, start, end), nil
}

func (h *Handler) defaultRange() (time.Time, time.Time) {
	now := h.now()
	return now.AddDate(0, 0, -h.defaults.LookbackDays), now
}

func (h *Handler) logProgress(c *gin.Context) coordinator.ProgressSink {
	rid := middleware.GetRequestID(c)
	return coordinator.ProgressFunc(func(p coordinator.Progress) {
		logger.L().Info().
			Str("request_id", rid).
			Int("done", p.Done).
			Int("total", p.Total).
			Float64("progress", p.Fraction()).
			Msg("fetch progress")
	})
}

func (h *Handler) renderFormError(c *gin.Context, status int, req HistoryRequest, msg string) {
	c.HTML(status, "index.html", page{
		Slugs:   req.Slugs,
		Metrics: req.Metrics,
		Start:   req.Start,
		End:     req.End,
		Error:   msg,
	})
}

// statusFor maps a failed fetch to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, table.ErrNoObservations):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// messageFor returns a short user-facing summary of err.
func messageFor(err error) string {
	if errors.Is(err, table.ErrNoObservations) {
		return "a provider returned no observations for one of the days"
	}
	switch fetcher.TypeOf(err) {
	case fetcher.ErrorTypeAuth:
		return "the API key was rejected"
	case fetcher.ErrorTypeRateLimit:
		return "the API rate limit was exceeded"
	case fetcher.ErrorTypeTimeout:
		return "the API did not answer in time"
	case fetcher.ErrorTypeValidation:
		return "the API returned an unexpected response"
	default:
		return "failed to fetch historical data"
	}
}
