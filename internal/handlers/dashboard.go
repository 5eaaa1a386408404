package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/export"
	"SweetDelights/internal/middleware"
	"SweetDelights/internal/models"
	"SweetDelights/internal/ui"
)

const dashboardPath = "/admin/dashboard"

type sortHeader struct {
	Label     string
	URL       string
	Active    bool
	Ascending bool
}

// dashboardURL keeps the current sort and, when open, the add-cake panel.
func dashboardURL(s ui.Sort, panel ui.Panel) string {
	q := s.Query()
	if panel.IsOpen() {
		q.Set("panel", ui.PanelAddCake)
	}
	return withQuery(dashboardPath, q)
}

func sortHeaders(s ui.Sort) []sortHeader {
	columns := []struct{ label, column string }{
		{"Date", ui.ColumnCreatedAt},
		{"Customer", ui.ColumnName},
		{"Contact", ui.ColumnEmail},
		{"Cake Details", ""},
		{"Message", ""},
	}
	headers := make([]sortHeader, 0, len(columns))
	for _, c := range columns {
		hd := sortHeader{Label: c.label}
		if c.column != "" {
			hd.URL = withQuery(dashboardPath, s.Toggle(c.column).Query())
			hd.Active = s.Active(c.column)
			hd.Ascending = hd.Active && s.Ascending()
		}
		headers = append(headers, hd)
	}
	return headers
}

func (h *Handlers) listEnquiries(ctx context.Context, s ui.Sort) ([]models.EnquiryRow, error) {
	return h.backend.Rows.ListEnquiries(ctx, backend.EnquiryQuery{
		OrderBy:     s.Column,
		Ascending:   s.Ascending(),
		IncludeCake: true,
	})
}

// ShowDashboard lists enquiries in the requested order and, with
// ?panel=add-cake, the add-cake form.
func (h *Handlers) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort := ui.ParseSort(q.Get("sort"), q.Get("dir"))
	panel := ui.ParsePanel(q.Get("panel"), ui.PanelAddCake)

	var toasts []ui.Toast
	rows, err := h.listEnquiries(r.Context(), sort)
	if err != nil {
		h.logger.Error("list enquiries", zap.Error(err))
		toasts = append(toasts, ui.Failure("Failed to load enquiries"))
		rows = nil
	}

	admin, _ := middleware.AdminFromContext(r.Context())

	h.render(w, r, http.StatusOK, "dashboard", map[string]any{
		"Title":      "Admin Dashboard",
		"Admin":      admin,
		"Enquiries":  rows,
		"Headers":    sortHeaders(sort),
		"Sort":       sort,
		"Panel":      panel,
		"Draft":      h.sessions.Draft(r),
		"AddCakeURL": dashboardURL(sort, ui.Open),
		"CloseURL":   dashboardURL(sort, ui.Closed),
		"ExportURL":  withQuery(dashboardPath+"/export", sort.Query()),
	}, toasts...)
}

// ExportEnquiries downloads every enquiry, with its cake, as CSV in the
// dashboard's current order.
func (h *Handlers) ExportEnquiries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort := ui.ParseSort(q.Get("sort"), q.Get("dir"))

	rows, err := h.listEnquiries(r.Context(), sort)
	if err != nil {
		h.logger.Error("export enquiries", zap.Error(err))
		h.flash(w, r, ui.Failure("Failed to export enquiries"))
		http.Redirect(w, r, dashboardURL(sort, ui.Closed), http.StatusSeeOther)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteEnquiriesCSV(&buf, rows, h.loc); err != nil {
		h.logger.Error("write enquiries csv", zap.Error(err))
		h.flash(w, r, ui.Failure("Failed to export enquiries"))
		http.Redirect(w, r, dashboardURL(sort, ui.Closed), http.StatusSeeOther)
		return
	}

	name := export.FileName(h.now().In(h.loc))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = buf.WriteTo(w)
}

