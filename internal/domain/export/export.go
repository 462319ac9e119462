package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"academy/internal/domain/booking"
)

// Format constants for export file format.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ReportVersion is bumped whenever a column is added, removed or renamed.
const ReportVersion = "1"

// Domain errors.
var (
	ErrInvalidFormat = errors.New("export format must be csv or json")
)

// Columns is the CSV header row, in order.
var Columns = []string{
	"id", "athlete", "email", "package", "month", "players",
	"amount", "status", "created_at", "confirmed_at",
}

// Row is one booking as it appears in an export.
type Row struct {
	ID          string `json:"id"`
	Athlete     string `json:"athlete"`
	Email       string `json:"email"`
	Package     string `json:"package"`
	Month       string `json:"month"`
	Players     int    `json:"players"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
}

// Metadata contains information about the export itself.
type Metadata struct {
	ExportDate  time.Time `json:"export_date"`
	Format      string    `json:"format"`
	Version     string    `json:"version"`
	RecordCount int       `json:"record_count"`
	Month       string    `json:"month,omitempty"`
}

// Report is a point-in-time snapshot of bookings ready to be written out.
type Report struct {
	Bookings []Row    `json:"bookings"`
	Metadata Metadata `json:"export_metadata"`
}

// ParseFormat normalises a requested format. Empty means CSV.
// PRE: none
// POST: Returns FormatCSV or FormatJSON, or ErrInvalidFormat
func ParseFormat(s string) (string, error) {
	switch s {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", ErrInvalidFormat
}

// NewReport builds a report over bs. month is recorded in the metadata only.
// PRE: format came from ParseFormat
// POST: len(Bookings) == len(bs), in the same order
func NewReport(bs []booking.Booking, format, month string, at time.Time) Report {
	rows := make([]Row, 0, len(bs))
	for _, b := range bs {
		row := Row{
			ID:        b.ID,
			Athlete:   b.UserName,
			Email:     b.UserEmail,
			Package:   b.Label(),
			Month:     b.Month,
			Players:   b.Players,
			Amount:    b.Amount,
			Status:    string(b.Status),
			CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if !b.ConfirmedAt.IsZero() {
			row.ConfirmedAt = b.ConfirmedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return Report{
		Bookings: rows,
		Metadata: Metadata{
			ExportDate:  at.UTC(),
			Format:      format,
			Version:     ReportVersion,
			RecordCount: len(rows),
			Month:       month,
		},
	}
}

// FileName is the suggested download name, e.g. "bookings-2025-06.csv".
func (r Report) FileName() string {
	scope := r.Metadata.Month
	if scope == "" {
		scope = "all"
	}
	return fmt.Sprintf("bookings-%s.%s", scope, r.Metadata.Format)
}

// ContentType returns the MIME type for the report's format.
func (r Report) ContentType() string {
	if r.Metadata.Format == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// Write encodes the report in its own format.
func (r Report) Write(w io.Writer) error {
	if r.Metadata.Format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return r.writeCSV(w)
}

func (r Report) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, row := range r.Bookings {
		rec := []string{
			row.ID, row.Athlete, row.Email, row.Package, row.Month,
			strconv.Itoa(row.Players), strconv.FormatInt(row.Amount, 10),
			row.Status, row.CreatedAt, row.ConfirmedAt,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
