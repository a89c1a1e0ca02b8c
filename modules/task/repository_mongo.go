package task

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	domain "github.com/Frsoul7/simple-task-manager/domain/task"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase = "tasks-db"
	tasksCollection      = "tasks"
)

// taskDocument is the BSON shape of a task in the tasks collection.
type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	DueDate     *time.Time         `bson:"dueDate"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *taskDocument) toEntity() *domain.Task {
	t := &domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// MongoRepository stores tasks in a MongoDB collection.
type MongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ domain.Repository = (*MongoRepository)(nil)

// OpenMongo connects to the MongoDB deployment at uri. The database name is
// taken from the URI path, falling back to tasks-db.
func OpenMongo(ctx context.Context, uri string) (*MongoRepository, error) {
	dbName, err := mongoDatabaseName(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetServerSelectionTimeout(5*time.Second).
		SetSocketTimeout(45*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoRepository{
		client: client,
		coll:   client.Database(dbName).Collection(tasksCollection),
	}

	if _, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create tasks index: %w", err)
	}

	return repo, nil
}

func mongoDatabaseName(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid mongodb uri: %w", err)
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return defaultMongoDatabase, nil
	}
	return name, nil
}

// Ping checks that the deployment is reachable.
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (r *MongoRepository) Close(ctx context.Context) error {
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

// FindAll returns all tasks sorted by creation time, newest first.
func (r *MongoRepository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: err}
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: err}
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toEntity())
	}
	return tasks, nil
}

// FindByID returns the task with the given id. Ids that are not valid
// ObjectIDs cannot match any document and are reported as absent.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, &domain.PersistenceError{Op: "find", Err: err}
	}
	return doc.toEntity(), nil
}

// Create inserts a new task document.
func (r *MongoRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	stored := *t
	domain.Normalize(&stored)

	// BSON dates hold milliseconds; truncate so the returned task matches
	// what later reads decode.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := taskDocument{
		Title:       stored.Title,
		Description: stored.Description,
		Completed:   stored.Completed,
		CreatedAt:   stored.CreatedAt.UTC().Truncate(time.Millisecond),
		UpdatedAt:   now,
	}
	if stored.DueDate != nil {
		due := stored.DueDate.UTC().Truncate(time.Millisecond)
		doc.DueDate = &due
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create", Err: err}
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, &domain.PersistenceError{Op: "create", Err: fmt.Errorf("unexpected inserted id %v", res.InsertedID)}
	}
	doc.ID = oid
	return doc.toEntity(), nil
}

// Update sets the patched fields and returns the document after the update.
func (r *MongoRepository) Update(ctx context.Context, id string, p domain.Patch) (*domain.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var patched domain.Task
	p.Apply(&patched)

	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = patched.Title
	}
	if p.Description != nil {
		set["description"] = patched.Description
	}
	if p.ClearDueDate || p.DueDate != nil {
		set["dueDate"] = patched.DueDate
	}
	if p.Completed != nil {
		set["completed"] = patched.Completed
	}

	var doc taskDocument
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, &domain.PersistenceError{Op: "update", Err: err}
	}
	return doc.toEntity(), nil
}

// Delete removes the task document with the given id.
func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, &domain.PersistenceError{Op: "delete", Err: err}
	}
	return res.DeletedCount > 0, nil
}
