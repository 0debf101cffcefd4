// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "encoding/json"

// ImageKind tags the variant held by an ImageSource.
type ImageKind int

// Image source kinds.
const (
	ImageNone ImageKind = iota
	ImageUploaded
	ImageExternal
)

// ImageSource is either an uploaded file (served from the uploads
// location) or an external URL. The zero value means "no image".
type ImageSource struct {
	kind  ImageKind
	value string
}

// Uploaded returns an ImageSource pointing at an uploaded file.
func Uploaded(path string) ImageSource {
	if path == "" {
		return ImageSource{}
	}
	return ImageSource{kind: ImageUploaded, value: path}
}

// External returns an ImageSource pointing at an external URL.
func External(url string) ImageSource {
	if url == "" {
		return ImageSource{}
	}
	return ImageSource{kind: ImageExternal, value: url}
}

// ImageFromColumns rebuilds an ImageSource from the stored image and
// image_url columns. An uploaded file wins over an external URL.
func ImageFromColumns(image, imageURL string) ImageSource {
	if image != "" {
		return Uploaded(image)
	}
	return External(imageURL)
}

// Kind returns the variant tag.
func (s ImageSource) Kind() ImageKind { return s.kind }

// IsZero reports whether no image is set.
func (s ImageSource) IsZero() bool { return s.kind == ImageNone }

// Path returns the uploaded file path, if this is an uploaded image.
func (s ImageSource) Path() (string, bool) {
	return s.value, s.kind == ImageUploaded
}

// URL returns the external URL, if this is an external image.
func (s ImageSource) URL() (string, bool) {
	return s.value, s.kind == ImageExternal
}

// Src returns the value to place in an <img src> attribute.
func (s ImageSource) Src() string { return s.value }

// Columns splits the source into the image and image_url columns.
func (s ImageSource) Columns() (image, imageURL string) {
	switch s.kind {
	case ImageUploaded:
		return s.value, ""
	case ImageExternal:
		return "", s.value
	default:
		return "", ""
	}
}

// MarshalJSON renders the source as its display value.
func (s ImageSource) MarshalJSON() ([]byte, error) {
	if s.kind == ImageNone {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}
