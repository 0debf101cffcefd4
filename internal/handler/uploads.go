// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/olegiv/mobidoc/internal/upload"
)

// Image form fields shared by the post and gallery forms.
const (
	fieldImage       = "image"
	fieldImageURL    = "image_url"
	fieldRemoveImage = "remove_image"
)

// maxUploadRequestBytes leaves room for the text fields next to one image.
const maxUploadRequestBytes = upload.MaxSize + 1<<20

// parseUploadForm parses a multipart form with a bounded body. Plain
// urlencoded forms are accepted too.
func parseUploadForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequestBytes)
	err := r.ParseMultipartForm(maxFormMemoryBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// uploadErrorMessage maps an upload or form parsing error to the message
// shown to the editor. It reports false for errors that are not the
// editor's fault.
func uploadErrorMessage(err error) (string, bool) {
	var verr *upload.ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return upload.MsgTooLarge, true
	}
	return "", false
}
