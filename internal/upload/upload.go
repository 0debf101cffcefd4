// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package upload validates image uploads, normalises them and hands them to
// a storage backend. It is the single place where form input becomes a
// model.ImageSource.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"

	"github.com/olegiv/mobidoc/internal/imaging"
	"github.com/olegiv/mobidoc/internal/model"
)

// MaxSize is the largest accepted upload.
const MaxSize = 5 << 20

// User-facing validation messages.
const (
	MsgInvalidType   = "Invalid file type. Please upload only JPEG, JPG, PNG, GIF or WEBP images."
	MsgTooLarge      = "File size too large. Please upload an image smaller than 5MB."
	MsgInvalidURL    = "Please provide a valid image URL starting with http:// or https://."
	MsgImageRequired = "Please either upload an image file or provide an image URL."
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ValidationError is an upload the visitor must fix.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Uploader validates, processes and stores uploaded images.
type Uploader struct {
	storage   Storage
	processor *imaging.Processor
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an Uploader.
func New(storage Storage, processor *imaging.Processor, logger *slog.Logger) *Uploader {
	if processor == nil {
		processor = imaging.NewProcessor(0, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{storage: storage, processor: processor, logger: logger, now: time.Now}
}

// Resolve turns the file field and URL field of a multipart form into an
// ImageSource. An uploaded file wins over a URL. With required set, a form
// carrying neither is a ValidationError; otherwise the zero ImageSource is
// returned.
func (u *Uploader) Resolve(ctx context.Context, r *http.Request, fileField, urlField string, required bool) (model.ImageSource, error) {
	file, header, err := r.FormFile(fileField)
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		if header.Filename != "" {
			return u.Save(ctx, file, header)
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return model.ImageSource{}, fmt.Errorf("reading upload: %w", err)
	}

	if raw := strings.TrimSpace(r.FormValue(urlField)); raw != "" {
		if !IsImageURL(raw) {
			return model.ImageSource{}, invalid(MsgInvalidURL)
		}
		return model.External(raw), nil
	}

	if required {
		return model.ImageSource{}, invalid(MsgImageRequired)
	}
	return model.ImageSource{}, nil
}

// Save validates and stores a single uploaded file.
func (u *Uploader) Save(ctx context.Context, file multipart.File, header *multipart.FileHeader) (model.ImageSource, error) {
	if header.Size > MaxSize {
		return model.ImageSource{}, invalid(MsgTooLarge)
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return model.ImageSource{}, invalid(MsgInvalidType)
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !model.IsImageMimeType(ct) && ct != "image/jpg" {
		return model.ImageSource{}, invalid(MsgInvalidType)
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxSize+1))
	if err != nil {
		return model.ImageSource{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxSize {
		return model.ImageSource{}, invalid(MsgTooLarge)
	}
	if !model.IsImageMimeType(imaging.DetectMimeType(data)) {
		return model.ImageSource{}, invalid(MsgInvalidType)
	}

	res, err := u.processor.Process(data)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return model.ImageSource{}, invalid(MsgInvalidType)
		}
		return model.ImageSource{}, fmt.Errorf("processing upload: %w", err)
	}

	name := FileName(header.Filename, u.now())
	ref, err := u.storage.Save(ctx, name, res.MimeType, res.Data)
	if err != nil {
		return model.ImageSource{}, err
	}
	u.logger.Info("image uploaded", "file", name, "size", len(res.Data), "width", res.Width, "height", res.Height)
	return model.Uploaded(ref), nil
}

// Remove deletes an uploaded image. External and empty sources are ignored.
// Failures are logged, never returned.
func (u *Uploader) Remove(ctx context.Context, src model.ImageSource) {
	ref, ok := src.Path()
	if !ok {
		return
	}
	if err := u.storage.Delete(ctx, nameFromRef(ref)); err != nil {
		u.logger.Warn("failed to remove uploaded image", "ref", ref, "error", err)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName builds the stored name "<unix-millis>-<name>", with name
// transliterated to ASCII and stripped of path separators and unsafe characters.
func FileName(original string, now time.Time) string {
	original = strings.ReplaceAll(original, "\\", "/")
	if i := strings.LastIndex(original, "/"); i >= 0 {
		original = original[i+1:]
	}
	name := unidecode.Unidecode(original)
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "-")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".-")
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}

// IsImageURL reports whether raw is an absolute http(s) URL.
func IsImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
