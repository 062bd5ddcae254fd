package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/weifish0/file-upload-sys/internal/models"
)

const (
	submissionsCollection = "submissions"
	adminsCollection      = "admins"
)

// NewMongoDB connects and pings within a timeout.
func NewMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client.Database(database), nil
}

// mongoSubmission carries the ObjectID alongside the shared model.
type mongoSubmission struct {
	OID               primitive.ObjectID `bson:"_id,omitempty"`
	models.Submission `bson:",inline"`
}

// MongoSubmissionRepository filters, paginates and aggregates in memory
// after a full collection fetch. Fine while the collection stays small
// (a single workshop's submissions); a known scalability limit kept
// contained inside this type.
type MongoSubmissionRepository struct {
	coll *mongo.Collection
}

func NewMongoSubmissionRepository(db *mongo.Database) *MongoSubmissionRepository {
	return &MongoSubmissionRepository{coll: db.Collection(submissionsCollection)}
}

func (r *MongoSubmissionRepository) Create(ctx context.Context, sub *models.Submission) (string, error) {
	res, err := r.coll.InsertOne(ctx, mongoSubmission{Submission: *sub})
	if err != nil {
		return "", fmt.Errorf("mongo: create submission: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("mongo: create submission: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoSubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc mongoSubmission
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo: find submission %s: %w", id, err)
	}
	sub := doc.Submission
	sub.ID = doc.OID.Hex()
	return &sub, nil
}

func (r *MongoSubmissionRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo: delete submission %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// fetchAll returns the whole collection newest-first.
func (r *MongoSubmissionRepository) fetchAll(ctx context.Context) ([]models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "upload_time", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: fetch submissions: %w", err)
	}
	var docs []mongoSubmission
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode submissions: %w", err)
	}
	subs := make([]models.Submission, 0, len(docs))
	for _, doc := range docs {
		sub := doc.Submission
		sub.ID = doc.OID.Hex()
		subs = append(subs, sub)
	}
	return subs, nil
}

func (r *MongoSubmissionRepository) filtered(ctx context.Context, search string) ([]models.Submission, error) {
	subs, err := r.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(search)
	if term == "" {
		return subs, nil
	}
	matched := make([]models.Submission, 0, len(subs))
	for i := range subs {
		if matchesSearch(&subs[i], term) {
			matched = append(matched, subs[i])
		}
	}
	return matched, nil
}

func (r *MongoSubmissionRepository) List(ctx context.Context, filter ListFilter) ([]models.Submission, error) {
	subs, err := r.filtered(ctx, filter.Search)
	if err != nil {
		return nil, err
	}
	return pageSlice(subs, filter.Offset, filter.Limit), nil
}

func (r *MongoSubmissionRepository) Count(ctx context.Context, search string) (int64, error) {
	subs, err := r.filtered(ctx, search)
	if err != nil {
		return 0, err
	}
	return int64(len(subs)), nil
}

func (r *MongoSubmissionRepository) SumFileSize(ctx context.Context, search string) (int64, error) {
	subs, err := r.filtered(ctx, search)
	if err != nil {
		return 0, err
	}
	var sum int64
	for i := range subs {
		sum += subs[i].FileSize
	}
	return sum, nil
}

func (r *MongoSubmissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	return r.fetchAll(ctx)
}

type mongoAdmin struct {
	OID          primitive.ObjectID `bson:"_id,omitempty"`
	models.Admin `bson:",inline"`
}

type MongoAdminRepository struct {
	coll *mongo.Collection
}

func NewMongoAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{coll: db.Collection(adminsCollection)}
}

func (r *MongoAdminRepository) Create(ctx context.Context, admin *models.Admin) (string, error) {
	res, err := r.coll.InsertOne(ctx, mongoAdmin{Admin: *admin})
	if err != nil {
		return "", fmt.Errorf("mongo: create admin: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("mongo: create admin: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoAdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var doc mongoAdmin
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo: find admin %q: %w", username, err)
	}
	admin := doc.Admin
	admin.ID = doc.OID.Hex()
	return &admin, nil
}

func (r *MongoAdminRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo: count admins: %w", err)
	}
	return count, nil
}
