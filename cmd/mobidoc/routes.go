// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/config"
	"github.com/olegiv/mobidoc/internal/contact"
	"github.com/olegiv/mobidoc/internal/handler"
	"github.com/olegiv/mobidoc/internal/middleware"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/session"
	"github.com/olegiv/mobidoc/internal/store"
	"github.com/olegiv/mobidoc/internal/upload"
	"github.com/olegiv/mobidoc/internal/version"
	"github.com/olegiv/mobidoc/web"
)

const uploadsPrefix = "/uploads"

// Contact intake throttle: one submission per five seconds, bursts of three.
const (
	contactRateLimit = 0.2
	contactRateBurst = 3
)

// routerDeps carries everything newRouter wires into handlers.
type routerDeps struct {
	cfg        *config.Config
	store      store.Store
	sessions   *session.Manager
	renderer   *render.Renderer
	uploader   *upload.Uploader
	contact    *contact.Service
	mailer     handler.MailVerifier
	version    version.Info
	uploadsDir string // empty unless uploads live on local disk
}

// crudHandlers defines the standard CRUD handler methods.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers standard CRUD routes for a resource.
// Routes: GET /, GET /new, POST /, GET /{id}, POST /{id}, POST /{id}/delete
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	baseID := base + handler.RouteParamID
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(baseID, h.EditForm)
	r.Post(baseID, h.Update) // HTML forms can't send PUT
	r.Post(baseID+handler.RouteSuffixDelete, h.Delete)
}

// registerListCreateDelete registers the routes of resources edited inline
// on their list page.
func registerListCreateDelete(r chi.Router, base string, list, create, del http.HandlerFunc) {
	r.Get(base, list)
	r.Post(base, create)
	r.Post(base+handler.RouteParamID+handler.RouteSuffixDelete, del)
}

func newRouter(d routerDeps) (http.Handler, error) {
	cfg := d.cfg

	frontendHandler := handler.NewFrontendHandler(d.store, d.renderer)
	contactHandler := handler.NewContactHandler(d.contact)
	authHandler := handler.NewAuthHandler(auth.NewService(d.store), d.sessions, d.renderer, d.store)
	adminHandler := handler.NewAdminHandler(d.store, d.renderer)
	postsHandler := handler.NewPostsHandler(d.store, d.uploader, d.renderer)
	galleryHandler := handler.NewGalleryHandler(d.store, d.uploader, d.renderer)
	videosHandler := handler.NewVideosHandler(d.store, d.renderer)
	servicesHandler := handler.NewServicesHandler(d.store, d.renderer)
	messagesHandler := handler.NewMessagesHandler(d.store, d.contact, d.store, d.renderer)
	usersHandler := handler.NewUsersHandler(d.store, d.store, d.renderer)
	eventsHandler := handler.NewEventsHandler(d.store, d.renderer, cfg.EventRetention())
	mailHandler := handler.NewMailHandler(d.mailer, d.store)
	healthHandler := handler.NewHealthHandler(d.store, d.version)
	seoHandler := handler.NewSEOHandler(d.store, cfg.SiteURL, !cfg.IsProduction())

	contactLimiter := middleware.NewRateLimiter(contactRateLimit, contactRateBurst)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(d.sessions.LoadAndSave)
	r.Use(middleware.LoadIdentity(d.sessions))

	// Public site
	r.Get(handler.RouteRoot, frontendHandler.Home)
	r.Get(handler.RouteServices, frontendHandler.Services)
	r.Get(handler.RoutePosts, frontendHandler.Posts)
	r.Get(handler.RoutePost, frontendHandler.Post)
	r.Get(handler.RouteGallery, frontendHandler.Gallery)
	r.Get(handler.RouteYouTube, frontendHandler.YouTube)
	r.Get(handler.RouteContact, frontendHandler.Contact)
	r.Get(handler.RouteHealth, healthHandler.Health)
	r.Get(handler.RouteSitemap, seoHandler.Sitemap)
	r.Get(handler.RouteRobots, seoHandler.Robots)

	r.Group(func(r chi.Router) {
		r.Use(contactLimiter.Middleware())
		r.Post(handler.RouteContactSubmit, contactHandler.Submit)
		r.Post(handler.RouteContact, contactHandler.Legacy)
	})

	// Mounted as a subrouter so CORS sees preflight requests before routing
	r.Route(handler.RouteAPI, func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSOrigins))
		r.Use(middleware.APIThrottle(cfg.APIRateLimit, time.Minute))
		r.Get(handler.RoutePosts, frontendHandler.APIPosts)
		r.Get(handler.RouteGallery, frontendHandler.APIGallery)
		r.Get(handler.RouteYouTube, frontendHandler.APIYouTube)
	})

	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerPort)))

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginLimiter.HTMLMiddleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(auth.RequireAuth))
			r.Get(handler.RouteRoot, adminHandler.Dashboard)
			r.Get(handler.RouteDashboard, adminHandler.Dashboard)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(auth.RequireEditor))

			registerCRUD(r, handler.RoutePosts, crudHandlers{
				List:     postsHandler.List,
				NewForm:  postsHandler.NewForm,
				Create:   postsHandler.Create,
				EditForm: postsHandler.EditForm,
				Update:   postsHandler.Update,
				Delete:   postsHandler.Delete,
			})
			registerCRUD(r, handler.RouteServices, crudHandlers{
				List:     servicesHandler.List,
				NewForm:  servicesHandler.NewForm,
				Create:   servicesHandler.Create,
				EditForm: servicesHandler.EditForm,
				Update:   servicesHandler.Update,
				Delete:   servicesHandler.Delete,
			})
			registerListCreateDelete(r, handler.RouteGallery, galleryHandler.List, galleryHandler.Create, galleryHandler.Delete)
			registerListCreateDelete(r, handler.RouteVideos, videosHandler.List, videosHandler.Create, videosHandler.Delete)

			messageID := handler.RouteMessages + handler.RouteParamID
			r.Get(handler.RouteMessages, messagesHandler.List)
			r.Post(messageID+handler.RouteSuffixRead, messagesHandler.MarkRead)
			r.Post(messageID+handler.RouteSuffixReadAPI, messagesHandler.MarkReadAPI)
			r.Post(messageID+handler.RouteSuffixDelete, messagesHandler.Delete)
			r.Post(handler.RouteSendEmailReply, messagesHandler.SendEmailReply)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(auth.RequireAdmin))
			r.Get(handler.RouteUsers, usersHandler.List)
			r.Post(handler.RouteUsers, usersHandler.Create)
			r.Post(handler.RouteUsers+handler.RouteParamID+handler.RouteSuffixDelete, usersHandler.Delete)
			r.Get(handler.RouteEvents, eventsHandler.List)
			r.Post(handler.RouteEvents+handler.RouteSuffixPurge, eventsHandler.Purge)
			r.Get(handler.RouteTestEmail, mailHandler.TestEmail)
		})
	})

	// Embedded assets are immutable per build
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", middleware.StaticCache(middleware.StaticMaxAge)(
		middleware.NoDirListing(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))))

	if d.uploadsDir != "" {
		r.Handle(uploadsPrefix+"/*", middleware.StaticCache(middleware.UploadsMaxAge)(
			middleware.NoDirListing(http.StripPrefix(uploadsPrefix+"/", http.FileServer(http.Dir(d.uploadsDir))))))
	}

	r.NotFound(frontendHandler.NotFound)

	return r, nil
}
