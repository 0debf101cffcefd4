// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Service statuses.
const (
	ServiceStatusActive   = "active"
	ServiceStatusInactive = "inactive"
)

// DefaultVideoCategory is used when a video is saved without a category.
const DefaultVideoCategory = "general"

// Post is a blog post. Author is free text, not a user reference.
type Post struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Image     ImageSource `json:"image"`
	Author    string      `json:"author"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// IsPublished returns true if the post is visible on the public site.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// NormalizePostStatus maps anything other than "published" to draft.
func NormalizePostStatus(status string) string {
	if status == PostStatusPublished {
		return PostStatusPublished
	}
	return PostStatusDraft
}

// GalleryItem is a photo shown on the gallery page.
type GalleryItem struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Image       ImageSource `json:"image"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Video is a YouTube video listed on the video page.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	VideoID     string    `json:"video_id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// EmbedURL returns the YouTube embed URL for the video.
func (v *Video) EmbedURL() string {
	return "https://www.youtube.com/embed/" + v.VideoID
}

// Service is a repair service offered by the shop.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsActive returns true if the service is listed publicly.
func (s *Service) IsActive() bool {
	return s.Status == ServiceStatusActive
}

// NormalizeServiceStatus maps anything other than "inactive" to active.
func NormalizeServiceStatus(status string) string {
	if status == ServiceStatusInactive {
		return ServiceStatusInactive
	}
	return ServiceStatusActive
}
