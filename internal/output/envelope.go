package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Response is the success envelope for JSON output.
type Response struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// ErrorResponse is the error envelope for JSON output.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

// Format specifies the output format.
type Format int

const (
	FormatText  Format = iota // Human-readable summary lines
	FormatJSON                // Envelope as JSON
	FormatQuiet               // Data only, no envelope
)

// Writer handles all output formatting.
type Writer struct {
	format Format
	out    io.Writer
	errOut io.Writer
}

// New creates a new output writer.
func New(format Format) *Writer {
	return &Writer{format: format, out: os.Stdout, errOut: os.Stderr}
}

// NewTo creates a writer with explicit destinations, for tests.
func NewTo(format Format, out, errOut io.Writer) *Writer {
	return &Writer{format: format, out: out, errOut: errOut}
}

// ResponseOption customizes a success response.
type ResponseOption func(*Response)

// WithSummary attaches a human-readable summary line.
func WithSummary(s string) ResponseOption {
	return func(r *Response) { r.Summary = s }
}

// OK outputs a success response.
func (w *Writer) OK(data any, opts ...ResponseOption) error {
	resp := &Response{OK: true, Data: data}
	for _, opt := range opts {
		opt(resp)
	}

	switch w.format {
	case FormatQuiet:
		return w.writeJSON(data)
	case FormatJSON:
		return w.writeJSON(resp)
	default:
		if resp.Summary != "" {
			fmt.Fprintln(w.out, resp.Summary)
			if data == nil {
				return nil
			}
		}
		return w.writeJSON(data)
	}
}

// Err outputs an error response and returns its exit code.
func (w *Writer) Err(err error) int {
	e := AsError(err)

	if w.format == FormatJSON || w.format == FormatQuiet {
		_ = json.NewEncoder(w.errOut).Encode(&ErrorResponse{
			OK:    false,
			Error: e.Message,
			Code:  e.Code,
			Hint:  e.Hint,
		})
		return e.ExitCode()
	}

	fmt.Fprintf(w.errOut, "Error: %s\n", e.Message)
	if e.Hint != "" {
		fmt.Fprintf(w.errOut, "Hint: %s\n", e.Hint)
	}
	return e.ExitCode()
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
