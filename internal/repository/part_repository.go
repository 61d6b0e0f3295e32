package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/persistence"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// PartRepository encapsulates the parts catalog.
type PartRepository interface {
	Create(ctx context.Context, part *domain.Part) error
	GetByID(ctx context.Context, id string) (*domain.Part, error)
	List(ctx context.Context, limit, offset int64) ([]domain.Part, error)
	Update(ctx context.Context, part *domain.Part) error
	Delete(ctx context.Context, id string) error
}

type partRepository struct {
	coll *mongo.Collection
}

// NewPartRepository instantiates repository.
func NewPartRepository(db *mongo.Database) PartRepository {
	return &partRepository{coll: db.Collection(persistence.CollParts)}
}

func (r *partRepository) Create(ctx context.Context, part *domain.Part) error {
	now := time.Now()
	part.CreatedAt = now
	part.UpdatedAt = now
	if part.ID == "" {
		part.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.coll.InsertOne(ctx, part)
	return err
}

func (r *partRepository) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	var part domain.Part
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&part)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("part", map[string]any{"part_id": id})
		}
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) List(ctx context.Context, limit, offset int64) ([]domain.Part, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, findOptions(limit, offset))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var parts []domain.Part
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *partRepository) Update(ctx context.Context, part *domain.Part) error {
	part.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": part.ID}, part)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFound("part", map[string]any{"part_id": part.ID})
	}
	return nil
}

func (r *partRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFound("part", map[string]any{"part_id": id})
	}
	return nil
}

// findOptions applies pagination shared by the list queries.
func findOptions(limit, offset int64) *options.FindOptions {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	return opts
}
