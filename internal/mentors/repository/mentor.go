package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	mentorserrors "mentorhub/internal/mentors/errors"
	"mentorhub/pkg/config"
	"mentorhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "MentorProfiles"

// BrowseQuery narrows the public mentor directory.
type BrowseQuery struct {
	Search    string
	Expertise string
	Limit     int
	Offset    int64
}

type MentorRepository interface {
	Create(ctx context.Context, profile *model.MentorProfile) error
	FindByUserID(ctx context.Context, userID string) (*model.MentorProfile, error)
	ListApproved(ctx context.Context, q BrowseQuery) ([]*model.MentorProfile, error)
	CountApproved(ctx context.Context, q BrowseQuery) (int64, error)
	ListByStatus(ctx context.Context, status model.MentorStatus, limit int, offset int64) ([]*model.MentorProfile, error)
	CountByStatus(ctx context.Context, status model.MentorStatus) (int64, error)
	Update(ctx context.Context, userID string, set bson.M) error
}

type mongoMentorRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMentorRepository(cfg *config.Config) MentorRepository {
	db := cfg.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMentorRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoMentorRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoMentorRepository) Create(ctx context.Context, profile *model.MentorProfile) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	profile.CreatedAt = now
	profile.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return mentorserrors.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create mentor profile: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		profile.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMentorRepository) FindByUserID(ctx context.Context, userID string) (*model.MentorProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var profile model.MentorProfile
	err := r.collection.FindOne(ctx, bson.M{"user.id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mentorserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find mentor profile: %w", err)
	}

	return &profile, nil
}

func (q BrowseQuery) mongoFilter() bson.M {
	m := bson.M{
		"status":                string(model.MentorApproved),
		"is_accepting_requests": true,
	}

	if q.Expertise != "" {
		m["expertise"] = q.Expertise
	}
	if q.Search != "" {
		pattern := regexp.QuoteMeta(q.Search)
		m["$or"] = []bson.M{
			{"user.name": bson.M{"$regex": pattern, "$options": "i"}},
			{"expertise": bson.M{"$regex": pattern, "$options": "i"}},
			{"job_title": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return m
}

func (r *mongoMentorRepository) ListApproved(ctx context.Context, q BrowseQuery) ([]*model.MentorProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(q.Limit)).
		SetSkip(q.Offset)

	cursor, err := r.collection.Find(ctx, q.mongoFilter(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find mentor profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*model.MentorProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode mentor profiles: %w", err)
	}

	return profiles, nil
}

func (r *mongoMentorRepository) CountApproved(ctx context.Context, q BrowseQuery) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, q.mongoFilter())
	if err != nil {
		return 0, fmt.Errorf("failed to count mentor profiles: %w", err)
	}
	return count, nil
}

func (r *mongoMentorRepository) ListByStatus(ctx context.Context, status model.MentorStatus, limit int, offset int64) ([]*model.MentorProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}). // oldest applications first
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"status": string(status)}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find mentor profiles by status: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*model.MentorProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode mentor profiles: %w", err)
	}

	return profiles, nil
}

func (r *mongoMentorRepository) CountByStatus(ctx context.Context, status model.MentorStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": string(status)})
	if err != nil {
		return 0, fmt.Errorf("failed to count mentor profiles by status: %w", err)
	}
	return count, nil
}

func (r *mongoMentorRepository) Update(ctx context.Context, userID string, set bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, bson.M{"user.id": userID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update mentor profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return mentorserrors.ErrNotFound
	}

	return nil
}
