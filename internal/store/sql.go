// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/olegiv/mobidoc/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for unique key violations.
const mysqlDuplicateEntry = 1062

// SQLStore implements Store on SQLite or MySQL. Both dialects accept the
// same "?" placeholders, so the queries are shared.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLStore wraps an opened and migrated database.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, now: time.Now}
}

// DB returns the underlying database handle.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the database.
func (s *SQLStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func queryOne[T any](ctx context.Context, db *sql.DB, scan func(rowScanner) (T, error), query string, args ...any) (T, error) {
	v, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

func queryList[T any](ctx context.Context, db *sql.DB, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// exec runs a write and maps unique violations to ErrConflict.
func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return res, nil
}

// execOne runs a write that must touch exactly one row.
func (s *SQLStore) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) deleteByID(ctx context.Context, table, id string) error {
	return s.execOne(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
}

func mapWriteErr(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %s", ErrConflict, myErr.Message)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// ---- users ----

const userColumns = "id, username, email, password_hash, role, created_at"

func scanUser(r rowScanner) (model.User, error) {
	var u model.User
	err := r.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a user, assigning an ID when empty.
func (s *SQLStore) CreateUser(ctx context.Context, u *model.User) error {
	newID(&u.ID)
	stamp(&u.CreatedAt, s.now())
	_, err := s.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	return err
}

func (s *SQLStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return queryOne(ctx, s.db, scanUser, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return queryOne(ctx, s.db, scanUser, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]model.User, error) {
	return queryList(ctx, s.db, scanUser, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
}

func (s *SQLStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return s.execOne(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
}

func (s *SQLStore) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "users", id)
}

func (s *SQLStore) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM users")
}

// ---- posts ----

const postColumns = "id, title, content, image, image_url, author, status, created_at, updated_at"

func scanPost(r rowScanner) (model.Post, error) {
	var (
		p               model.Post
		image, imageURL string
	)
	err := r.Scan(&p.ID, &p.Title, &p.Content, &image, &imageURL, &p.Author, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	p.Image = model.ImageFromColumns(image, imageURL)
	return p, err
}

func (s *SQLStore) CreatePost(ctx context.Context, p *model.Post) error {
	newID(&p.ID)
	now := s.now()
	stamp(&p.CreatedAt, now)
	stamp(&p.UpdatedAt, now)
	p.Status = model.NormalizePostStatus(p.Status)
	image, imageURL := p.Image.Columns()
	_, err := s.exec(ctx,
		"INSERT INTO posts ("+postColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Title, p.Content, image, imageURL, p.Author, p.Status, p.CreatedAt, p.UpdatedAt)
	return err
}

// UpdatePost rewrites every editable field and bumps updated_at.
func (s *SQLStore) UpdatePost(ctx context.Context, p *model.Post) error {
	p.UpdatedAt = time.Time{}
	stamp(&p.UpdatedAt, s.now())
	p.Status = model.NormalizePostStatus(p.Status)
	image, imageURL := p.Image.Columns()
	return s.execOne(ctx,
		`UPDATE posts SET title = ?, content = ?, image = ?, image_url = ?, author = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Content, image, imageURL, p.Author, p.Status, p.UpdatedAt, p.ID)
}

func (s *SQLStore) GetPost(ctx context.Context, id string) (model.Post, error) {
	return queryOne(ctx, s.db, scanPost, "SELECT "+postColumns+" FROM posts WHERE id = ?", id)
}

// ListPosts returns posts newest first.
func (s *SQLStore) ListPosts(ctx context.Context, f PostFilter) ([]model.Post, error) {
	query := "SELECT " + postColumns + " FROM posts"
	var args []any
	if f.Status != "" {
		query += " WHERE status = ?"
		args = append(args, f.Status)
	}
	query += " ORDER BY created_at DESC" + limitClause(f.Limit)
	return queryList(ctx, s.db, scanPost, query, args...)
}

func (s *SQLStore) DeletePost(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "posts", id)
}

func (s *SQLStore) CountPosts(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM posts")
}

// ---- gallery ----

const galleryColumns = "id, title, image, image_url, category, description, created_at"

func scanGalleryItem(r rowScanner) (model.GalleryItem, error) {
	var (
		g               model.GalleryItem
		image, imageURL string
	)
	err := r.Scan(&g.ID, &g.Title, &image, &imageURL, &g.Category, &g.Description, &g.CreatedAt)
	g.Image = model.ImageFromColumns(image, imageURL)
	return g, err
}

func (s *SQLStore) CreateGalleryItem(ctx context.Context, g *model.GalleryItem) error {
	newID(&g.ID)
	stamp(&g.CreatedAt, s.now())
	image, imageURL := g.Image.Columns()
	_, err := s.exec(ctx,
		"INSERT INTO gallery_items ("+galleryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		g.ID, g.Title, image, imageURL, g.Category, g.Description, g.CreatedAt)
	return err
}

func (s *SQLStore) GetGalleryItem(ctx context.Context, id string) (model.GalleryItem, error) {
	return queryOne(ctx, s.db, scanGalleryItem, "SELECT "+galleryColumns+" FROM gallery_items WHERE id = ?", id)
}

func (s *SQLStore) ListGalleryItems(ctx context.Context, limit int) ([]model.GalleryItem, error) {
	return queryList(ctx, s.db, scanGalleryItem,
		"SELECT "+galleryColumns+" FROM gallery_items ORDER BY created_at DESC"+limitClause(limit))
}

func (s *SQLStore) DeleteGalleryItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "gallery_items", id)
}

func (s *SQLStore) CountGalleryItems(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM gallery_items")
}

// ---- videos ----

const videoColumns = "id, title, video_id, description, category, created_at"

func scanVideo(r rowScanner) (model.Video, error) {
	var v model.Video
	err := r.Scan(&v.ID, &v.Title, &v.VideoID, &v.Description, &v.Category, &v.CreatedAt)
	return v, err
}

func (s *SQLStore) CreateVideo(ctx context.Context, v *model.Video) error {
	newID(&v.ID)
	stamp(&v.CreatedAt, s.now())
	if v.Category == "" {
		v.Category = model.DefaultVideoCategory
	}
	_, err := s.exec(ctx,
		"INSERT INTO youtube_videos ("+videoColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		v.ID, v.Title, v.VideoID, v.Description, v.Category, v.CreatedAt)
	return err
}

func (s *SQLStore) GetVideo(ctx context.Context, id string) (model.Video, error) {
	return queryOne(ctx, s.db, scanVideo, "SELECT "+videoColumns+" FROM youtube_videos WHERE id = ?", id)
}

func (s *SQLStore) ListVideos(ctx context.Context) ([]model.Video, error) {
	return queryList(ctx, s.db, scanVideo, "SELECT "+videoColumns+" FROM youtube_videos ORDER BY created_at DESC")
}

func (s *SQLStore) DeleteVideo(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "youtube_videos", id)
}

func (s *SQLStore) CountVideos(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM youtube_videos")
}

// ---- services ----

const serviceColumns = "id, name, description, icon, price, status, created_at, updated_at"

func scanService(r rowScanner) (model.Service, error) {
	var sv model.Service
	err := r.Scan(&sv.ID, &sv.Name, &sv.Description, &sv.Icon, &sv.Price, &sv.Status, &sv.CreatedAt, &sv.UpdatedAt)
	return sv, err
}

func (s *SQLStore) CreateService(ctx context.Context, sv *model.Service) error {
	newID(&sv.ID)
	now := s.now()
	stamp(&sv.CreatedAt, now)
	stamp(&sv.UpdatedAt, now)
	sv.Status = model.NormalizeServiceStatus(sv.Status)
	_, err := s.exec(ctx,
		"INSERT INTO services ("+serviceColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		sv.ID, sv.Name, sv.Description, sv.Icon, sv.Price, sv.Status, sv.CreatedAt, sv.UpdatedAt)
	return err
}

func (s *SQLStore) UpdateService(ctx context.Context, sv *model.Service) error {
	sv.UpdatedAt = time.Time{}
	stamp(&sv.UpdatedAt, s.now())
	sv.Status = model.NormalizeServiceStatus(sv.Status)
	return s.execOne(ctx,
		`UPDATE services SET name = ?, description = ?, icon = ?, price = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		sv.Name, sv.Description, sv.Icon, sv.Price, sv.Status, sv.UpdatedAt, sv.ID)
}

func (s *SQLStore) GetService(ctx context.Context, id string) (model.Service, error) {
	return queryOne(ctx, s.db, scanService, "SELECT "+serviceColumns+" FROM services WHERE id = ?", id)
}

// ListServices returns services newest first, optionally filtered by status.
func (s *SQLStore) ListServices(ctx context.Context, status string) ([]model.Service, error) {
	query := "SELECT " + serviceColumns + " FROM services"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"
	return queryList(ctx, s.db, scanService, query, args...)
}

func (s *SQLStore) DeleteService(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "services", id)
}

func (s *SQLStore) CountServices(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM services")
}

// ---- contact messages ----

const messageColumns = "id, first_name, last_name, email, phone, device_type, service_needed, message, status, user_agent, created_at"

func scanMessage(r rowScanner) (model.ContactMessage, error) {
	var m model.ContactMessage
	err := r.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.DeviceType,
		&m.ServiceNeeded, &m.Message, &m.Status, &m.UserAgent, &m.CreatedAt)
	return m, err
}

func (s *SQLStore) CreateMessage(ctx context.Context, m *model.ContactMessage) error {
	newID(&m.ID)
	stamp(&m.CreatedAt, s.now())
	if m.Status == "" {
		m.Status = model.MessageStatusNew
	}
	_, err := s.exec(ctx,
		"INSERT INTO contact_messages ("+messageColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.FirstName, m.LastName, m.Email, m.Phone, m.DeviceType,
		m.ServiceNeeded, m.Message, m.Status, m.UserAgent, m.CreatedAt)
	return err
}

func (s *SQLStore) GetMessage(ctx context.Context, id string) (model.ContactMessage, error) {
	return queryOne(ctx, s.db, scanMessage, "SELECT "+messageColumns+" FROM contact_messages WHERE id = ?", id)
}

func (s *SQLStore) ListMessages(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	return queryList(ctx, s.db, scanMessage,
		"SELECT "+messageColumns+" FROM contact_messages ORDER BY created_at DESC"+limitClause(limit))
}

func (s *SQLStore) DeleteMessage(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "contact_messages", id)
}

func (s *SQLStore) CountMessages(ctx context.Context, status string) (int64, error) {
	if status == "" {
		return s.count(ctx, "SELECT COUNT(*) FROM contact_messages")
	}
	return s.count(ctx, "SELECT COUNT(*) FROM contact_messages WHERE status = ?", status)
}

// AdvanceMessage moves a message forward. The status guard sits in the
// WHERE clause so concurrent updates never move a message backwards.
func (s *SQLStore) AdvanceMessage(ctx context.Context, id, status string) (bool, error) {
	preds := model.PredecessorStatuses(status)
	if len(preds) == 0 {
		return false, fmt.Errorf("no status can advance to %q", status)
	}

	args := []any{status, id}
	for _, p := range preds {
		args = append(args, p)
	}
	res, err := s.exec(ctx,
		"UPDATE contact_messages SET status = ? WHERE id = ? AND status IN ("+placeholders(len(preds))+")",
		args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	if _, err := s.GetMessage(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *SQLStore) MarkRepliedSince(ctx context.Context, email string, since time.Time) (int64, error) {
	res, err := s.exec(ctx,
		"UPDATE contact_messages SET status = ? WHERE email = ? AND created_at >= ? AND status <> ?",
		model.MessageStatusReplied, email, since.UTC(), model.MessageStatusReplied)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- events ----

const eventColumns = "id, level, category, message, metadata, created_at"

func scanEvent(r rowScanner) (model.Event, error) {
	var e model.Event
	err := r.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt)
	return e, err
}

func (s *SQLStore) CreateEvent(ctx context.Context, e *model.Event) error {
	newID(&e.ID)
	stamp(&e.CreatedAt, s.now())
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	_, err := s.exec(ctx,
		"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.Level, e.Category, e.Message, e.Metadata, e.CreatedAt)
	return err
}

func (s *SQLStore) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	return queryList(ctx, s.db, scanEvent,
		"SELECT "+eventColumns+" FROM events ORDER BY created_at DESC"+limitClause(limit))
}

func (s *SQLStore) PurgeEventsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.exec(ctx, "DELETE FROM events WHERE created_at < ?", t.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ Store = (*SQLStore)(nil)
