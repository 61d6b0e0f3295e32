package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/persistence"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// RequestFilter captures listing parameters.
type RequestFilter struct {
	CustomerID         *string
	AssignedTechnician *string
	Statuses           []domain.RequestStatus
	Limit              int64
	Offset             int64
}

// RequestRepository encapsulates service request persistence.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	// Update writes the aggregate conditionally on the revision it was read
	// at; a concurrent writer surfaces as CONCURRENCY_CONFLICT.
	Update(ctx context.Context, request *domain.ServiceRequest) error
	List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error)
	Delete(ctx context.Context, id string) error
}

type requestRepository struct {
	coll *mongo.Collection
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(db *mongo.Database) RequestRepository {
	return &requestRepository{coll: db.Collection(persistence.CollRequests)}
}

func (r *requestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	request.Revision = 1
	if request.ID == "" {
		request.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.coll.InsertOne(ctx, request)
	return err
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	var request domain.ServiceRequest
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": id})
		}
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) Update(ctx context.Context, request *domain.ServiceRequest) error {
	readRevision := request.Revision
	request.Revision = readRevision + 1
	request.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": request.ID, "revision": readRevision}, request)
	if err != nil {
		request.Revision = readRevision
		return err
	}
	if res.MatchedCount == 0 {
		request.Revision = readRevision
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": request.ID})
		if err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NewNotFound("request", map[string]any{"request_id": request.ID})
		}
		return apperrors.NewConcurrencyConflict("request", map[string]any{"request_id": request.ID})
	}
	return nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error) {
	query := bson.M{}
	if filter.CustomerID != nil {
		query["customerId"] = *filter.CustomerID
	}
	if filter.AssignedTechnician != nil {
		query["assignedTechnician"] = *filter.AssignedTechnician
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	opts := findOptions(filter.Limit, filter.Offset)
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []domain.ServiceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFound("request", map[string]any{"request_id": id})
	}
	return nil
}
