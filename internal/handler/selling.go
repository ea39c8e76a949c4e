package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/sellwithus/storefront/internal/model"
	"github.com/sellwithus/storefront/internal/service"
	"github.com/sellwithus/storefront/internal/web"
)

const (
	msgSubmissionSent = "Submission sent successfully!"
	msgUploadTooLarge = "Your upload is too large. Please send fewer or smaller images."
	msgSubmissionFail = "Something went wrong with your submission. Please try again."
)

type sellingView struct {
	Flash     string
	MaxImages int
	Accept    string
	Year      int
}

// SellingForm renders the empty submission form and any pending flash message
func (h *Handler) SellingForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageSelling, sellingView{
		Flash:     h.flash.Pop(w, r),
		MaxImages: h.submissions.MaxImages(),
		Accept:    acceptList(h.cfg.Upload.AllowedExtensions),
		Year:      h.now().Year(),
	})
}

// SubmitSelling runs the submission pipeline and redirects back to the form
func (h *Handler) SubmitSelling(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Upload.MaxRequestBytes)
	if err := r.ParseMultipartForm(h.cfg.Upload.MaxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn().Int64("limit", tooLarge.Limit).Msg("submission body too large")
			h.redirectWithFlash(w, r, msgUploadTooLarge)
			return
		}
		log.Warn().Err(err).Msg("failed to parse submission form")
		h.redirectWithFlash(w, r, msgSubmissionFail)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	req := model.SubmissionRequest{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
	}
	if r.MultipartForm != nil {
		req.Images = uploadsFrom(r.MultipartForm.File["images"])
	}

	result, err := h.submissions.Submit(r.Context(), req)
	if err != nil {
		var delivery *service.MailDeliveryError
		switch {
		case errors.Is(err, service.ErrTooManyImages):
			h.redirectWithFlash(w, r, fmt.Sprintf("You can upload up to %d images only.", h.submissions.MaxImages()))
		case errors.As(err, &delivery):
			h.redirectWithFlash(w, r, fmt.Sprintf("Error sending email: %v", delivery.Err))
		default:
			log.Error().Err(err).Msg("submission failed")
			h.redirectWithFlash(w, r, msgSubmissionFail)
		}
		return
	}

	log.Info().
		Str("batch", result.RequestID).
		Int("attached", result.Attached).
		Int("skipped", result.Skipped).
		Msg("selling submission accepted")

	h.redirectWithFlash(w, r, msgSubmissionSent)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, msg string) {
	h.flash.Set(w, msg)
	http.Redirect(w, r, "/selling", http.StatusSeeOther)
}

// uploadsFrom adapts multipart file headers; files are opened lazily by the
// submission pipeline.
func uploadsFrom(headers []*multipart.FileHeader) []model.Upload {
	uploads := make([]model.Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, model.Upload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return uploads
}
