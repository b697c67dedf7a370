package api

import (
	"time"

	"stakingfetcher/internal/table"
)

// HistoryRequest is the input of every history endpoint. Lists are
// comma-separated; dates are YYYY-MM-DD and default to the configured
// lookback window when empty. The API key is never serialised.
type HistoryRequest struct {
	Slugs   string `json:"slugs" form:"slugs"`
	Metrics string `json:"metrics" form:"metrics"`
	Start   string `json:"start" form:"start"`
	End     string `json:"end" form:"end"`
	APIKey  string `json:"-" form:"api_key"`
}

// TableResponse is the JSON rendering of a table.
type TableResponse struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// NewTableResponse converts t for JSON output.
func NewTableResponse(t *table.Table) TableResponse {
	return TableResponse{Columns: t.Columns, Rows: t.Objects()}
}

// ProgressEvent is the payload of a "progress" server-sent event.
type ProgressEvent struct {
	Done     int     `json:"done"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Message      string    `json:"message"`
	ErrorDetails string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse stamped with the current time.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
