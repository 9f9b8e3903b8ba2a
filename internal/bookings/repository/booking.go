package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	bookingserrors "mentorhub/internal/bookings/errors"
	"mentorhub/pkg/config"
	mongotx "mentorhub/pkg/db/mongo"
	"mentorhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Bookings"

// ListQuery selects one participant's view of their bookings.
type ListQuery struct {
	UserID string
	Role   model.Actor
	Filter model.BookingFilter
	Search string
	Now    time.Time
	Limit  int
	Offset int64
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, q ListQuery) ([]*model.Booking, error)
	Count(ctx context.Context, q ListQuery) (int64, error)
	HasActiveOverlap(ctx context.Context, mentorID string, start, end time.Time) (bool, error)
	UpdateVersioned(ctx context.Context, id string, version int64, set bson.M) error
	CompleteElapsed(ctx context.Context, cutoff time.Time) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction; a SessionContext cannot be wrapped without breaking
// transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// mongoFilter mirrors model.BookingFilter.Matches as a query document.
func (q ListQuery) mongoFilter() bson.M {
	m := bson.M{}

	if q.Role == model.ActorMentor {
		m["mentor.id"] = q.UserID
	} else {
		m["mentee.id"] = q.UserID
	}

	switch q.Filter {
	case model.FilterAll, "":
	case model.FilterUpcoming:
		m["status"] = bson.M{"$in": []string{
			string(model.BookingPending),
			string(model.BookingConfirmed),
		}}
		m["start_time"] = bson.M{"$gt": q.Now}
	case model.FilterCancelled:
		m["status"] = bson.M{"$in": []string{
			string(model.BookingCancelledByMentee),
			string(model.BookingCancelledByMentor),
		}}
	default:
		m["status"] = string(q.Filter)
	}

	if q.Search != "" {
		counterpartName := "mentee.name"
		if q.Role == model.ActorMentee {
			counterpartName = "mentor.name"
		}
		pattern := regexp.QuoteMeta(q.Search)
		m["$or"] = []bson.M{
			{counterpartName: bson.M{"$regex": pattern, "$options": "i"}},
			{"topic": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return m
}

func (r *mongoBookingRepository) List(ctx context.Context, q ListQuery) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(int64(q.Limit)).
		SetSkip(q.Offset)

	cursor, err := r.collection.Find(ctx, q.mongoFilter(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, q ListQuery) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, q.mongoFilter())
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// HasActiveOverlap reports whether the mentor already has a pending or
// confirmed booking intersecting the given window.
func (r *mongoBookingRepository) HasActiveOverlap(ctx context.Context, mentorID string, start, end time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"mentor.id": mentorID,
		"status": bson.M{"$in": []string{
			string(model.BookingPending),
			string(model.BookingConfirmed),
		}},
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return count > 0, nil
}

// UpdateVersioned applies a $set guarded by the expected version. A
// matched-count of zero means either the booking vanished or someone
// else updated it first; the two cases map to distinct errors.
func (r *mongoBookingRepository) UpdateVersioned(ctx context.Context, id string, version int64, set bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "booking_version": version}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"booking_version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("failed to check booking existence: %w", err)
		}
		if exists == 0 {
			return bookingserrors.ErrNotFound
		}
		return bookingserrors.ErrVersionMismatch
	}

	return nil
}

// CompleteElapsed flips confirmed bookings whose end time has passed to
// completed. Versions are bumped so concurrent client updates lose.
func (r *mongoBookingRepository) CompleteElapsed(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"status":   string(model.BookingConfirmed),
		"end_time": bson.M{"$lte": cutoff},
	}
	update := bson.M{
		"$set": bson.M{"status": string(model.BookingCompleted)},
		"$inc": bson.M{"booking_version": 1},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to complete elapsed bookings: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
