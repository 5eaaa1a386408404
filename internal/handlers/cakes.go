package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"SweetDelights/internal/models"
	"SweetDelights/internal/storage"
	"SweetDelights/internal/ui"
)

// All three add-cake actions post the whole form, so each one first folds
// the typed fields into the stored draft.
func (h *Handlers) readDraft(w http.ResponseWriter, r *http.Request) (ui.CakeDraft, ui.Sort, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	err := r.ParseMultipartForm(h.maxUpload)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}

	sort := ui.ParseSort(r.FormValue("sort"), r.FormValue("dir"))
	draft := h.sessions.Draft(r)
	if err != nil {
		return draft, sort, fmt.Errorf("parse cake form: %w", err)
	}

	draft.Name = r.FormValue("name")
	draft.Description = r.FormValue("description")
	if c := models.Category(r.FormValue("category")); c != "" {
		draft.Category = c
	}
	draft.Featured = r.FormValue("featured") != ""
	return draft, sort, nil
}

// uploadImages stores every file posted as "images" and appends the public
// URLs to the draft. A failed file does not stop the others.
func (h *Handlers) uploadImages(ctx context.Context, r *http.Request, draft *ui.CakeDraft) []ui.Toast {
	if r.MultipartForm == nil {
		return nil
	}
	var toasts []ui.Toast
	for _, fh := range r.MultipartForm.File["images"] {
		url, err := h.uploadImage(ctx, fh)
		if err != nil {
			h.logger.Error("upload image", zap.String("file", fh.Filename), zap.Error(err))
			toasts = append(toasts, ui.Failure("Failed to upload image"))
			continue
		}
		draft.AddImages(url)
	}
	return toasts
}

// uploadImage stores one file under a fresh name. The format is sniffed from
// the content; only raster images pass.
func (h *Handlers) uploadImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, storage.SniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	ext, ok := storage.ImageExt(head)
	if !ok {
		return "", fmt.Errorf("not a supported image: %q", fh.Header.Get("Content-Type"))
	}

	name := storage.ObjectName(ext)
	if err := h.backend.Storage.Upload(ctx, name, io.MultiReader(bytes.NewReader(head), f)); err != nil {
		return "", err
	}
	return h.backend.Storage.PublicURL(name), nil
}

// finish stores the draft and queued toasts and sends the admin back to
// the dashboard.
func (h *Handlers) finish(w http.ResponseWriter, r *http.Request, draft ui.CakeDraft, sort ui.Sort, panel ui.Panel, toasts ...ui.Toast) {
	if err := h.sessions.SaveDraft(w, r, draft); err != nil {
		h.logger.Error("save cake draft", zap.Error(err))
	}
	for _, t := range toasts {
		h.flash(w, r, t)
	}
	http.Redirect(w, r, dashboardURL(sort, panel), http.StatusSeeOther)
}

// UploadCakeImages adds the selected files to the cake being drafted.
func (h *Handlers) UploadCakeImages(w http.ResponseWriter, r *http.Request) {
	draft, sort, err := h.readDraft(w, r)
	if err != nil {
		h.logger.Warn("upload images", zap.Error(err))
		h.finish(w, r, draft, sort, ui.Open, ui.Failure("Failed to upload image"))
		return
	}
	h.finish(w, r, draft, sort, ui.Open, h.uploadImages(r.Context(), r, &draft)...)
}

// RemoveCakeImage drops one uploaded image from the draft. The stored
// object is left in place.
func (h *Handlers) RemoveCakeImage(w http.ResponseWriter, r *http.Request) {
	draft, sort, err := h.readDraft(w, r)
	if err != nil {
		h.logger.Warn("remove image", zap.Error(err))
		h.finish(w, r, draft, sort, ui.Open)
		return
	}
	if i, err := strconv.Atoi(r.FormValue("index")); err == nil {
		draft.RemoveImage(i)
	}
	h.finish(w, r, draft, sort, ui.Open)
}

// CreateCake inserts the drafted cake, uploading any files attached to the
// same post first. Success clears the form and closes the panel.
func (h *Handlers) CreateCake(w http.ResponseWriter, r *http.Request) {
	draft, sort, err := h.readDraft(w, r)
	if err != nil {
		h.logger.Warn("create cake", zap.Error(err))
		h.finish(w, r, draft, sort, ui.Open, ui.Failure("Failed to add cake"))
		return
	}
	toasts := h.uploadImages(r.Context(), r, &draft)

	cake := draft.Cake()
	switch {
	case cake.Name == "" || cake.Description == "":
		h.finish(w, r, draft, sort, ui.Open, append(toasts, ui.Failure("Please enter a name and description."))...)
		return
	case !cake.Category.Known():
		h.finish(w, r, draft, sort, ui.Open, append(toasts, ui.Failure("Please choose a category."))...)
		return
	}

	saved, err := h.backend.Rows.InsertCake(r.Context(), cake)
	if err != nil {
		h.logger.Error("insert cake", zap.Error(err))
		h.finish(w, r, draft, sort, ui.Open, append(toasts, ui.Failure("Failed to add cake"))...)
		return
	}
	h.logger.Info("cake added", zap.String("id", saved.ID), zap.String("category", string(saved.Category)))

	if err := h.sessions.ClearDraft(w, r); err != nil {
		h.logger.Error("clear cake draft", zap.Error(err))
	}
	for _, t := range append(toasts, ui.Success("Cake added successfully!")) {
		h.flash(w, r, t)
	}
	http.Redirect(w, r, dashboardURL(sort, ui.Closed), http.StatusSeeOther)
}
