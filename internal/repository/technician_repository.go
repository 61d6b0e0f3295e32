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

// NearQuery filters the geospatial candidate search. Skill is optional so the
// geo-only fallback can reuse the same query.
type NearQuery struct {
	Location  domain.GeoPoint
	MaxMeters float64
	Skill     *string
}

// TechnicianRepository encapsulates technician persistence.
type TechnicianRepository interface {
	Create(ctx context.Context, tech *domain.Technician) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Technician, error)
	// Update is revision-conditional like RequestRepository.Update.
	Update(ctx context.Context, tech *domain.Technician) error
	// FindNear returns active technicians within the radius, nearest first.
	FindNear(ctx context.Context, q NearQuery) ([]domain.Technician, error)
	// FindLeastBusy returns the active technician with the fewest current
	// jobs, or NotFound when none exist.
	FindLeastBusy(ctx context.Context) (*domain.Technician, error)
	List(ctx context.Context, limit, offset int64) ([]domain.Technician, error)
}

type technicianRepository struct {
	coll *mongo.Collection
}

// NewTechnicianRepository instantiates repository.
func NewTechnicianRepository(db *mongo.Database) TechnicianRepository {
	return &technicianRepository{coll: db.Collection(persistence.CollTechnicians)}
}

func (r *technicianRepository) Create(ctx context.Context, tech *domain.Technician) error {
	now := time.Now()
	tech.CreatedAt = now
	tech.UpdatedAt = now
	tech.Revision = 1
	if tech.ID == "" {
		tech.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.coll.InsertOne(ctx, tech)
	return err
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	return r.findOne(ctx, bson.M{"_id": id}, map[string]any{"technician_id": id})
}

func (r *technicianRepository) GetByUserID(ctx context.Context, userID string) (*domain.Technician, error) {
	return r.findOne(ctx, bson.M{"userId": userID}, map[string]any{"user_id": userID})
}

func (r *technicianRepository) findOne(ctx context.Context, filter bson.M, details map[string]any) (*domain.Technician, error) {
	var tech domain.Technician
	err := r.coll.FindOne(ctx, filter).Decode(&tech)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("technician", details)
		}
		return nil, err
	}
	return &tech, nil
}

func (r *technicianRepository) Update(ctx context.Context, tech *domain.Technician) error {
	readRevision := tech.Revision
	tech.Revision = readRevision + 1
	tech.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": tech.ID, "revision": readRevision}, tech)
	if err != nil {
		tech.Revision = readRevision
		return err
	}
	if res.MatchedCount == 0 {
		tech.Revision = readRevision
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": tech.ID})
		if err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NewNotFound("technician", map[string]any{"technician_id": tech.ID})
		}
		return apperrors.NewConcurrencyConflict("technician", map[string]any{"technician_id": tech.ID})
	}
	return nil
}

func (r *technicianRepository) FindNear(ctx context.Context, q NearQuery) ([]domain.Technician, error) {
	filter := bson.M{
		"active": true,
		"location": bson.M{
			"$near": bson.M{
				"$geometry":    q.Location,
				"$maxDistance": q.MaxMeters,
			},
		},
	}
	if q.Skill != nil {
		filter["skills"] = *q.Skill
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var techs []domain.Technician
	if err := cursor.All(ctx, &techs); err != nil {
		return nil, err
	}
	return techs, nil
}

func (r *technicianRepository) FindLeastBusy(ctx context.Context) (*domain.Technician, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "currentJobs", Value: 1}})
	var tech domain.Technician
	err := r.coll.FindOne(ctx, bson.M{"active": true}, opts).Decode(&tech)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("technician", nil)
		}
		return nil, err
	}
	return &tech, nil
}

func (r *technicianRepository) List(ctx context.Context, limit, offset int64) ([]domain.Technician, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, findOptions(limit, offset))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var techs []domain.Technician
	if err := cursor.All(ctx, &techs); err != nil {
		return nil, err
	}
	return techs, nil
}
