package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SweetDelights/internal/models"
)

func row(id, name string, at time.Time, message string) models.EnquiryRow {
	return models.EnquiryRow{
		Enquiry: models.Enquiry{
			ID:        id,
			CakeID:    "cake-1",
			Name:      name,
			Email:     strings.ToLower(name) + "@example.com",
			Phone:     "555-0100",
			Message:   message,
			CreatedAt: at,
		},
		CakeName:     "Classic Cheesecake",
		CakeCategory: models.Cheesecakes,
	}
}

func TestWriteEnquiriesCSVHeaderAndOrder(t *testing.T) {
	day := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)
	rows := []models.EnquiryRow{
		row("e2", "Bea", day.Add(24*time.Hour), "Birthday"),
		row("e1", "Al", day, "Wedding"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEnquiriesCSV(&buf, rows, time.UTC))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Name,Email,Phone,Cake,Category,Message", lines[0])
	assert.Equal(t, "2026-03-05,Bea,bea@example.com,555-0100,Classic Cheesecake,cheesecakes,Birthday", lines[1])
	assert.Equal(t, "2026-03-04,Al,al@example.com,555-0100,Classic Cheesecake,cheesecakes,Wedding", lines[2])
}

func TestWriteEnquiriesCSVQuotesEmbeddedCommas(t *testing.T) {
	day := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteEnquiriesCSV(&buf, []models.EnquiryRow{row("e1", "Al", day, `two tiers, "pink"`)}, time.UTC))

	assert.Contains(t, buf.String(), `,"two tiers, ""pink"""`)
}

func TestWriteEnquiriesCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEnquiriesCSV(&buf, nil, time.UTC))
	assert.Equal(t, "Date,Name,Email,Phone,Cake,Category,Message\n", buf.String())
}

func TestWriteEnquiriesCSVUsesLocation(t *testing.T) {
	// 23:30 UTC on the 4th is already the 5th in Tokyo.
	late := time.Date(2026, time.March, 4, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)

	var buf bytes.Buffer
	require.NoError(t, WriteEnquiriesCSV(&buf, []models.EnquiryRow{row("e1", "Al", late, "x")}, tokyo))

	assert.Contains(t, buf.String(), "\n2026-03-05,Al,")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "enquiries-2026-10-18.csv", FileName(time.Date(2026, time.October, 18, 23, 0, 0, 0, time.UTC)))
}
