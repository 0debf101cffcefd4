// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/olegiv/mobidoc/internal/model"
)

// DefaultMongoDatabase is used when the connection string names no database.
const DefaultMongoDatabase = "mobiledoctor"

// Collection names match the ones an existing deployment already holds.
const (
	collUsers     = "users"
	collPosts     = "posts"
	collGalleries = "galleries"
	collVideos    = "youtubevideos"
	collServices  = "services"
	collMessages  = "contactmessages"
	collEvents    = "events"
)

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// NewMongoStore connects to uri and ensures the unique user indexes exist.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing mongodb uri: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(dbName), now: time.Now}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(collUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("creating user indexes: %w", err)
	}
	_, err = s.db.Collection(collMessages).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("creating message indexes: %w", err)
	}
	return nil
}

// Database returns the underlying database handle.
func (s *MongoStore) Database() *mongo.Database { return s.db }

func (s *MongoStore) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *MongoStore) Close() error { return s.client.Disconnect(context.Background()) }

// ---- documents ----

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDoc) model() model.User {
	return model.User{
		ID: d.ID.Hex(), Username: d.Username, Email: d.Email,
		PasswordHash: d.Password, Role: d.Role, CreatedAt: d.CreatedAt,
	}
}

type postDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Image     string             `bson:"image,omitempty"`
	ImageURL  string             `bson:"image_url,omitempty"`
	Author    string             `bson:"author"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d postDoc) model() model.Post {
	return model.Post{
		ID: d.ID.Hex(), Title: d.Title, Content: d.Content,
		Image:  model.ImageFromColumns(d.Image, d.ImageURL),
		Author: d.Author, Status: d.Status, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

type galleryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Image       string             `bson:"image,omitempty"`
	ImageURL    string             `bson:"image_url,omitempty"`
	Category    string             `bson:"category"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d galleryDoc) model() model.GalleryItem {
	return model.GalleryItem{
		ID: d.ID.Hex(), Title: d.Title, Image: model.ImageFromColumns(d.Image, d.ImageURL),
		Category: d.Category, Description: d.Description, CreatedAt: d.CreatedAt,
	}
}

type videoDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	VideoID     string             `bson:"video_id"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d videoDoc) model() model.Video {
	return model.Video{
		ID: d.ID.Hex(), Title: d.Title, VideoID: d.VideoID,
		Description: d.Description, Category: d.Category, CreatedAt: d.CreatedAt,
	}
}

type serviceDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Icon        string             `bson:"icon"`
	Price       float64            `bson:"price"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d serviceDoc) model() model.Service {
	return model.Service{
		ID: d.ID.Hex(), Name: d.Name, Description: d.Description, Icon: d.Icon,
		Price: d.Price, Status: d.Status, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

type messageDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	FirstName     string             `bson:"first_name"`
	LastName      string             `bson:"last_name"`
	Email         string             `bson:"email"`
	Phone         string             `bson:"phone"`
	DeviceType    string             `bson:"device_type"`
	ServiceNeeded string             `bson:"service_needed"`
	Message       string             `bson:"message"`
	Status        string             `bson:"status"`
	UserAgent     string             `bson:"user_agent,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func (d messageDoc) model() model.ContactMessage {
	return model.ContactMessage{
		ID: d.ID.Hex(), FirstName: d.FirstName, LastName: d.LastName, Email: d.Email,
		Phone: d.Phone, DeviceType: d.DeviceType, ServiceNeeded: d.ServiceNeeded,
		Message: d.Message, Status: d.Status, UserAgent: d.UserAgent, CreatedAt: d.CreatedAt,
	}
}

type eventDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Level     string             `bson:"level"`
	Category  string             `bson:"category"`
	Message   string             `bson:"message"`
	Metadata  string             `bson:"metadata"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d eventDoc) model() model.Event {
	return model.Event{
		ID: d.ID.Hex(), Level: d.Level, Category: d.Category,
		Message: d.Message, Metadata: d.Metadata, CreatedAt: d.CreatedAt,
	}
}

// ---- helpers ----

type document[T any] interface {
	model() T
}

// objectID parses a hex id. Malformed ids cannot match any document.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func findOne[D document[T], T any](ctx context.Context, coll *mongo.Collection, filter any) (T, error) {
	var d D
	if err := coll.FindOne(ctx, filter).Decode(&d); err != nil {
		var zero T
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return d.model(), nil
}

func findByID[D document[T], T any](ctx context.Context, coll *mongo.Collection, id string) (T, error) {
	oid, err := objectID(id)
	if err != nil {
		var zero T
		return zero, err
	}
	return findOne[D, T](ctx, coll, bson.M{"_id": oid})
}

func findMany[D document[T], T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func newestFirst(limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func (s *MongoStore) insert(ctx context.Context, coll string, doc any) (string, error) {
	res, err := s.db.Collection(coll).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return "", err
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

func (s *MongoStore) updateByID(ctx context.Context, coll, id string, set bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.db.Collection(coll).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) deleteByID(ctx context.Context, coll, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) count(ctx context.Context, coll string, filter any) (int64, error) {
	return s.db.Collection(coll).CountDocuments(ctx, filter)
}

// ---- users ----

func (s *MongoStore) CreateUser(ctx context.Context, u *model.User) error {
	stamp(&u.CreatedAt, s.now())
	id, err := s.insert(ctx, collUsers, userDoc{
		Username: u.Username, Email: u.Email, Password: u.PasswordHash, Role: u.Role, CreatedAt: u.CreatedAt,
	})
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return findByID[userDoc, model.User](ctx, s.db.Collection(collUsers), id)
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return findOne[userDoc, model.User](ctx, s.db.Collection(collUsers), bson.M{"username": username})
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]model.User, error) {
	return findMany[userDoc, model.User](ctx, s.db.Collection(collUsers), bson.M{}, newestFirst(0))
}

func (s *MongoStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return s.updateByID(ctx, collUsers, id, bson.M{"password": passwordHash})
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collUsers, id)
}

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, collUsers, bson.M{})
}

// ---- posts ----

func (s *MongoStore) CreatePost(ctx context.Context, p *model.Post) error {
	now := s.now()
	stamp(&p.CreatedAt, now)
	stamp(&p.UpdatedAt, now)
	p.Status = model.NormalizePostStatus(p.Status)
	image, imageURL := p.Image.Columns()
	id, err := s.insert(ctx, collPosts, postDoc{
		Title: p.Title, Content: p.Content, Image: image, ImageURL: imageURL,
		Author: p.Author, Status: p.Status, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	})
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, p *model.Post) error {
	p.UpdatedAt = time.Time{}
	stamp(&p.UpdatedAt, s.now())
	p.Status = model.NormalizePostStatus(p.Status)
	image, imageURL := p.Image.Columns()
	return s.updateByID(ctx, collPosts, p.ID, bson.M{
		"title": p.Title, "content": p.Content, "image": image, "image_url": imageURL,
		"author": p.Author, "status": p.Status, "updatedAt": p.UpdatedAt,
	})
}

func (s *MongoStore) GetPost(ctx context.Context, id string) (model.Post, error) {
	return findByID[postDoc, model.Post](ctx, s.db.Collection(collPosts), id)
}

func (s *MongoStore) ListPosts(ctx context.Context, f PostFilter) ([]model.Post, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return findMany[postDoc, model.Post](ctx, s.db.Collection(collPosts), filter, newestFirst(f.Limit))
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collPosts, id)
}

func (s *MongoStore) CountPosts(ctx context.Context) (int64, error) {
	return s.count(ctx, collPosts, bson.M{})
}

// ---- gallery ----

func (s *MongoStore) CreateGalleryItem(ctx context.Context, g *model.GalleryItem) error {
	stamp(&g.CreatedAt, s.now())
	image, imageURL := g.Image.Columns()
	id, err := s.insert(ctx, collGalleries, galleryDoc{
		Title: g.Title, Image: image, ImageURL: imageURL,
		Category: g.Category, Description: g.Description, CreatedAt: g.CreatedAt,
	})
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

func (s *MongoStore) GetGalleryItem(ctx context.Context, id string) (model.GalleryItem, error) {
	return findByID[galleryDoc, model.GalleryItem](ctx, s.db.Collection(collGalleries), id)
}

func (s *MongoStore) ListGalleryItems(ctx context.Context, limit int) ([]model.GalleryItem, error) {
	return findMany[galleryDoc, model.GalleryItem](ctx, s.db.Collection(collGalleries), bson.M{}, newestFirst(limit))
}

func (s *MongoStore) DeleteGalleryItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collGalleries, id)
}

func (s *MongoStore) CountGalleryItems(ctx context.Context) (int64, error) {
	return s.count(ctx, collGalleries, bson.M{})
}

// ---- videos ----

func (s *MongoStore) CreateVideo(ctx context.Context, v *model.Video) error {
	stamp(&v.CreatedAt, s.now())
	if v.Category == "" {
		v.Category = model.DefaultVideoCategory
	}
	id, err := s.insert(ctx, collVideos, videoDoc{
		Title: v.Title, VideoID: v.VideoID, Description: v.Description,
		Category: v.Category, CreatedAt: v.CreatedAt,
	})
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

func (s *MongoStore) GetVideo(ctx context.Context, id string) (model.Video, error) {
	return findByID[videoDoc, model.Video](ctx, s.db.Collection(collVideos), id)
}

func (s *MongoStore) ListVideos(ctx context.Context) ([]model.Video, error) {
	return findMany[videoDoc, model.Video](ctx, s.db.Collection(collVideos), bson.M{}, newestFirst(0))
}

func (s *MongoStore) DeleteVideo(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collVideos, id)
}

func (s *MongoStore) CountVideos(ctx context.Context) (int64, error) {
	return s.count(ctx, collVideos, bson.M{})
}

// ---- services ----

func (s *MongoStore) CreateService(ctx context.Context, sv *model.Service) error {
	now := s.now()
	stamp(&sv.CreatedAt, now)
	stamp(&sv.UpdatedAt, now)
	sv.Status = model.NormalizeServiceStatus(sv.Status)
	id, err := s.insert(ctx, collServices, serviceDoc{
		Name: sv.Name, Description: sv.Description, Icon: sv.Icon, Price: sv.Price,
		Status: sv.Status, CreatedAt: sv.CreatedAt, UpdatedAt: sv.UpdatedAt,
	})
	if err != nil {
		return err
	}
	sv.ID = id
	return nil
}

func (s *MongoStore) UpdateService(ctx context.Context, sv *model.Service) error {
	sv.UpdatedAt = time.Time{}
	stamp(&sv.UpdatedAt, s.now())
	sv.Status = model.NormalizeServiceStatus(sv.Status)
	return s.updateByID(ctx, collServices, sv.ID, bson.M{
		"name": sv.Name, "description": sv.Description, "icon": sv.Icon,
		"price": sv.Price, "status": sv.Status, "updatedAt": sv.UpdatedAt,
	})
}

func (s *MongoStore) GetService(ctx context.Context, id string) (model.Service, error) {
	return findByID[serviceDoc, model.Service](ctx, s.db.Collection(collServices), id)
}

func (s *MongoStore) ListServices(ctx context.Context, status string) ([]model.Service, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return findMany[serviceDoc, model.Service](ctx, s.db.Collection(collServices), filter, newestFirst(0))
}

func (s *MongoStore) DeleteService(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collServices, id)
}

func (s *MongoStore) CountServices(ctx context.Context) (int64, error) {
	return s.count(ctx, collServices, bson.M{})
}

// ---- contact messages ----

func (s *MongoStore) CreateMessage(ctx context.Context, m *model.ContactMessage) error {
	stamp(&m.CreatedAt, s.now())
	if m.Status == "" {
		m.Status = model.MessageStatusNew
	}
	id, err := s.insert(ctx, collMessages, messageDoc{
		FirstName: m.FirstName, LastName: m.LastName, Email: m.Email, Phone: m.Phone,
		DeviceType: m.DeviceType, ServiceNeeded: m.ServiceNeeded, Message: m.Message,
		Status: m.Status, UserAgent: m.UserAgent, CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (s *MongoStore) GetMessage(ctx context.Context, id string) (model.ContactMessage, error) {
	return findByID[messageDoc, model.ContactMessage](ctx, s.db.Collection(collMessages), id)
}

func (s *MongoStore) ListMessages(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	return findMany[messageDoc, model.ContactMessage](ctx, s.db.Collection(collMessages), bson.M{}, newestFirst(limit))
}

func (s *MongoStore) DeleteMessage(ctx context.Context, id string) error {
	return s.deleteByID(ctx, collMessages, id)
}

func (s *MongoStore) CountMessages(ctx context.Context, status string) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return s.count(ctx, collMessages, filter)
}

func (s *MongoStore) AdvanceMessage(ctx context.Context, id, status string) (bool, error) {
	preds := model.PredecessorStatuses(status)
	if len(preds) == 0 {
		return false, fmt.Errorf("no status can advance to %q", status)
	}
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}

	res, err := s.db.Collection(collMessages).UpdateOne(ctx,
		bson.M{"_id": oid, "status": bson.M{"$in": preds}},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return false, err
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}
	if _, err := s.GetMessage(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *MongoStore) MarkRepliedSince(ctx context.Context, email string, since time.Time) (int64, error) {
	res, err := s.db.Collection(collMessages).UpdateMany(ctx,
		bson.M{
			"email":     email,
			"createdAt": bson.M{"$gte": since.UTC()},
			"status":    bson.M{"$ne": model.MessageStatusReplied},
		},
		bson.M{"$set": bson.M{"status": model.MessageStatusReplied}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ---- events ----

func (s *MongoStore) CreateEvent(ctx context.Context, e *model.Event) error {
	stamp(&e.CreatedAt, s.now())
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	id, err := s.insert(ctx, collEvents, eventDoc{
		Level: e.Level, Category: e.Category, Message: e.Message,
		Metadata: e.Metadata, CreatedAt: e.CreatedAt,
	})
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (s *MongoStore) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	return findMany[eventDoc, model.Event](ctx, s.db.Collection(collEvents), bson.M{}, newestFirst(limit))
}

func (s *MongoStore) PurgeEventsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.Collection(collEvents).DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": t.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

var _ Store = (*MongoStore)(nil)
