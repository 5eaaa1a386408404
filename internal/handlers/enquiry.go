package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SweetDelights/internal/models"
	"SweetDelights/internal/ui"
)

// SubmitEnquiry stores one enquiry for a cake. On success the client is
// redirected back to the category with the form closed; on failure the page
// is rendered again with the form open and the typed values kept.
func (h *Handlers) SubmitEnquiry(w http.ResponseWriter, r *http.Request) {
	category := models.Category(chi.URLParam(r, "category"))
	if err := r.ParseForm(); err != nil {
		h.flash(w, r, ui.Failure("Failed to submit enquiry. Please try again."))
		http.Redirect(w, r, categoryPath(category), http.StatusSeeOther)
		return
	}

	state := &enquiryState{
		CakeID: strings.TrimSpace(r.PostFormValue("cake_id")),
		Form: enquiryForm{
			Name:    strings.TrimSpace(r.PostFormValue("name")),
			Email:   strings.TrimSpace(r.PostFormValue("email")),
			Phone:   strings.TrimSpace(r.PostFormValue("phone")),
			Message: strings.TrimSpace(r.PostFormValue("message")),
		},
	}
	if state.CakeID == "" || !state.Form.complete() {
		h.renderCategory(w, r, category, state, ui.Failure("Please fill in all fields."))
		return
	}

	_, err := h.backend.Rows.InsertEnquiry(r.Context(), models.Enquiry{
		CakeID:  state.CakeID,
		Name:    state.Form.Name,
		Email:   state.Form.Email,
		Phone:   state.Form.Phone,
		Message: state.Form.Message,
	})
	if err != nil {
		h.logger.Error("insert enquiry", zap.String("cake_id", state.CakeID), zap.Error(err))
		h.renderCategory(w, r, category, state, ui.Failure("Failed to submit enquiry. Please try again."))
		return
	}

	h.flash(w, r, ui.Success("Your enquiry has been submitted!"))
	http.Redirect(w, r, categoryPath(category), http.StatusSeeOther)
}
