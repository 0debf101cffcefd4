// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixDelete is the suffix for delete routes (HTML forms can't send DELETE).
	RouteSuffixDelete = "/delete"
	// RouteSuffixRead is the suffix for the mark-read form route.
	RouteSuffixRead = "/read"
	// RouteSuffixReadAPI is the suffix for the mark-read JSON route.
	RouteSuffixReadAPI = "/read-api"
	// RouteSuffixPurge is the suffix for the event log purge route.
	RouteSuffixPurge = "/purge"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	RouteServices = "/services"
	RoutePosts    = "/posts"
	RoutePost     = "/post/{id}"
	RouteGallery  = "/gallery"
	RouteYouTube  = "/youtube"
	RouteContact  = "/contact"
	RouteHealth   = "/health"
	RouteSitemap  = "/sitemap.xml"
	RouteRobots   = "/robots.txt"

	// RouteContactSubmit is the contact form JSON endpoint.
	RouteContactSubmit = "/contact/submit"

	// RouteAPI prefixes the JSON mirrors of the posts, gallery and youtube pages.
	RouteAPI = "/api"

	RouteAdmin          = "/admin"
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteDashboard      = "/dashboard"
	RouteVideos         = "/videos"
	RouteMessages       = "/messages"
	RouteSendEmailReply = "/send-email-reply"
	RouteUsers          = "/users"
	RouteEvents         = "/events"
	RouteTestEmail      = "/test-email"
)

// Redirect targets.
const (
	redirectLogin         = "/admin/login"
	redirectAdmin         = "/admin/dashboard"
	redirectAdminPosts    = "/admin/posts"
	redirectAdminGallery  = "/admin/gallery"
	redirectAdminVideos   = "/admin/videos"
	redirectAdminServices = "/admin/services"
	redirectAdminMessages = "/admin/messages"
	redirectAdminUsers    = "/admin/users"
	redirectAdminEvents   = "/admin/events"
)

// Page sizes.
const (
	homePostLimit      = 3
	homeGalleryLimit   = 8
	dashboardLimit     = 5
	eventsPageLimit    = 200
	maxJSONBodyBytes   = 64 << 10
	maxFormMemoryBytes = 8 << 20
)

// Flash message types.
const (
	flashTypeSuccess = "success"
	flashTypeError   = "error"
)
