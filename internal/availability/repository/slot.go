package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityerrors "mentorhub/internal/availability/errors"
	"mentorhub/pkg/config"
	mongotx "mentorhub/pkg/db/mongo"
	"mentorhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SlotCollectionName = "AvailabilitySlots"
	SetCollectionName  = "AvailabilitySets"
)

type SlotRepository interface {
	ListByMentor(ctx context.Context, mentorID string) ([]*model.AvailabilitySlot, error)
	Insert(ctx context.Context, slot *model.AvailabilitySlot) error
	Delete(ctx context.Context, mentorID, slotID string) error
	GetSet(ctx context.Context, mentorID string) (*model.AvailabilitySet, error)
	ReplaceAll(ctx context.Context, mentorID string, slots []*model.AvailabilitySlot, expectedVersion int64) (int64, error)
}

type mongoSlotRepository struct {
	cfg       *config.Config
	slots     *mongo.Collection
	sets      *mongo.Collection
	txManager mongotx.TransactionManager
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:       cfg,
		slots:     db.Collection(SlotCollectionName),
		sets:      db.Collection(SetCollectionName),
		txManager: mongotx.NewTransactionManager(cfg.Mongo),
	}
}

func (r *mongoSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSlotRepository) ListByMentor(ctx context.Context, mentorID string) ([]*model.AvailabilitySlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "is_recurring", Value: -1},
		{Key: "day_of_week", Value: 1},
		{Key: "specific_date", Value: 1},
		{Key: "start_time", Value: 1},
	})

	cursor, err := r.slots.Find(ctx, bson.M{"mentor_id": mentorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find availability slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.AvailabilitySlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode availability slots: %w", err)
	}

	return slots, nil
}

func (r *mongoSlotRepository) Insert(ctx context.Context, slot *model.AvailabilitySlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.slots.InsertOne(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to insert availability slot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		slot.ID = oid.Hex()
	}
	return nil
}

// Delete removes one slot scoped to its owner and reports whether the
// slot actually existed.
func (r *mongoSlotRepository) Delete(ctx context.Context, mentorID, slotID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(slotID)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, slotID)
	}

	result, err := r.slots.DeleteOne(ctx, bson.M{"_id": objectID, "mentor_id": mentorID})
	if err != nil {
		return fmt.Errorf("failed to delete availability slot: %w", err)
	}
	if result.DeletedCount == 0 {
		return availabilityerrors.ErrNotFound
	}

	return nil
}

// GetSet returns the mentor's availability set marker; a mentor who has
// never saved availability is at version zero.
func (r *mongoSlotRepository) GetSet(ctx context.Context, mentorID string) (*model.AvailabilitySet, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var set model.AvailabilitySet
	err := r.sets.FindOne(ctx, bson.M{"_id": mentorID}).Decode(&set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.AvailabilitySet{MentorID: mentorID, Version: 0}, nil
		}
		return nil, fmt.Errorf("failed to find availability set: %w", err)
	}

	return &set, nil
}

// ReplaceAll swaps the mentor's whole slot collection in one
// transaction, guarded by the expected set version. Returns the new
// version.
func (r *mongoSlotRepository) ReplaceAll(ctx context.Context, mentorID string, slots []*model.AvailabilitySlot, expectedVersion int64) (int64, error) {
	newVersion := expectedVersion + 1

	err := r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		current, err := r.GetSet(sessCtx, mentorID)
		if err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return availabilityerrors.ErrVersionMismatch
		}

		if _, err := r.slots.DeleteMany(sessCtx, bson.M{"mentor_id": mentorID}); err != nil {
			return fmt.Errorf("failed to clear availability slots: %w", err)
		}

		now := time.Now().UTC().Truncate(time.Millisecond)
		if len(slots) > 0 {
			docs := make([]any, 0, len(slots))
			for _, slot := range slots {
				slot.MentorID = mentorID
				slot.CreatedAt = now
				docs = append(docs, slot)
			}
			result, err := r.slots.InsertMany(sessCtx, docs)
			if err != nil {
				return fmt.Errorf("failed to insert availability slots: %w", err)
			}
			for i, id := range result.InsertedIDs {
				if oid, ok := id.(primitive.ObjectID); ok {
					slots[i].ID = oid.Hex()
				}
			}
		}

		_, err = r.sets.UpdateOne(sessCtx,
			bson.M{"_id": mentorID},
			bson.M{"$set": bson.M{"version": newVersion, "updated_at": now}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("failed to bump availability set version: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return newVersion, nil
}
