// Package export renders enquiry lists for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"SweetDelights/internal/models"
)

// Header is the first CSV line.
var Header = []string{"Date", "Name", "Email", "Phone", "Cake", "Category", "Message"}

const dateLayout = "2006-01-02"

// WriteEnquiriesCSV writes the header and one line per row, in order, with
// dates taken in loc. Fields containing commas, quotes or newlines are quoted.
func WriteEnquiriesCSV(w io.Writer, rows []models.EnquiryRow, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.CreatedAt.In(loc).Format(dateLayout),
			r.Name,
			r.Email,
			r.Phone,
			r.CakeName,
			string(r.CakeCategory),
			r.Message,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is the attachment name for an export made at now.
func FileName(now time.Time) string {
	return "enquiries-" + now.Format(dateLayout) + ".csv"
}
