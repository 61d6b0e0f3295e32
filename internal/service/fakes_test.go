package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/geo"
	"github.com/garageops/dispatch-service/internal/repository"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

type fakeRequestRepo struct {
	mu      sync.Mutex
	store   map[string]domain.ServiceRequest
	nextID  int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{store: make(map[string]domain.ServiceRequest)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, request *domain.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request.ID == "" {
		r.nextID++
		request.ID = fmt.Sprintf("req-%d", r.nextID)
	}
	request.Revision = 1
	r.store[request.ID] = *request
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.store[id]
	if !ok {
		return nil, apperrors.NewNotFound("service request", map[string]any{"id": id})
	}
	copied := request
	return &copied, nil
}

func (r *fakeRequestRepo) Update(ctx context.Context, request *domain.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.store[request.ID]
	if !ok {
		return apperrors.NewNotFound("service request", map[string]any{"id": request.ID})
	}
	if current.Revision != request.Revision {
		return apperrors.NewConcurrencyConflict("service request", map[string]any{"id": request.ID})
	}
	request.Revision++
	r.store[request.ID] = *request
	return nil
}

func (r *fakeRequestRepo) List(ctx context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ServiceRequest, 0, len(r.store))
	for _, request := range r.store {
		if filter.CustomerID != nil && request.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.AssignedTechnician != nil && request.AssignedTechnician != *filter.AssignedTechnician {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, st := range filter.Statuses {
				if request.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, request)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRequestRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return apperrors.NewNotFound("service request", map[string]any{"id": id})
	}
	delete(r.store, id)
	return nil
}

type fakeTechnicianRepo struct {
	mu    sync.Mutex
	store map[string]domain.Technician
	order []string
}

func newFakeTechnicianRepo() *fakeTechnicianRepo {
	return &fakeTechnicianRepo{store: make(map[string]domain.Technician)}
}

func (r *fakeTechnicianRepo) Create(ctx context.Context, tech *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tech.ID == "" {
		tech.ID = "tech-" + tech.UserID
	}
	tech.Revision = 1
	r.store[tech.ID] = *tech
	r.order = append(r.order, tech.ID)
	return nil
}

func (r *fakeTechnicianRepo) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tech, ok := r.store[id]
	if !ok {
		return nil, apperrors.NewNotFound("technician", map[string]any{"id": id})
	}
	copied := tech
	return &copied, nil
}

func (r *fakeTechnicianRepo) GetByUserID(ctx context.Context, userID string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if tech := r.store[id]; tech.UserID == userID {
			copied := tech
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("technician", map[string]any{"user_id": userID})
}

func (r *fakeTechnicianRepo) Update(ctx context.Context, tech *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.store[tech.ID]
	if !ok {
		return apperrors.NewNotFound("technician", map[string]any{"id": tech.ID})
	}
	if current.Revision != tech.Revision {
		return apperrors.NewConcurrencyConflict("technician", map[string]any{"id": tech.ID})
	}
	tech.Revision++
	r.store[tech.ID] = *tech
	return nil
}

// FindNear mimics the geospatial query: active technicians inside the
// radius, optionally skill-filtered, nearest first with insertion order as
// the tiebreak.
func (r *fakeTechnicianRepo) FindNear(ctx context.Context, q repository.NearQuery) ([]domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	type ranked struct {
		tech domain.Technician
		dist float64
		idx  int
	}
	matches := make([]ranked, 0, len(r.order))
	for i, id := range r.order {
		tech := r.store[id]
		if !tech.Active {
			continue
		}
		if q.Skill != nil && !tech.HasSkill(*q.Skill) {
			continue
		}
		dist := geo.DistanceKM(tech.Location.Lat(), tech.Location.Lng(), q.Location.Lat(), q.Location.Lng())
		if dist*1000 > q.MaxMeters {
			continue
		}
		matches = append(matches, ranked{tech: tech, dist: dist, idx: i})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist == matches[j].dist {
			return matches[i].idx < matches[j].idx
		}
		return matches[i].dist < matches[j].dist
	})
	out := make([]domain.Technician, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.tech)
	}
	return out, nil
}

func (r *fakeTechnicianRepo) FindLeastBusy(ctx context.Context) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *domain.Technician
	for _, id := range r.order {
		tech := r.store[id]
		if !tech.Active {
			continue
		}
		if best == nil || tech.CurrentJobs < best.CurrentJobs {
			copied := tech
			best = &copied
		}
	}
	if best == nil {
		return nil, apperrors.NewNotFound("technician", nil)
	}
	return best, nil
}

func (r *fakeTechnicianRepo) List(ctx context.Context, limit, offset int64) ([]domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Technician, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.store[id])
	}
	return out, nil
}

type fakePartRepo struct {
	mu    sync.Mutex
	store map[string]domain.Part
}

func newFakePartRepo(parts ...domain.Part) *fakePartRepo {
	repo := &fakePartRepo{store: make(map[string]domain.Part)}
	for _, part := range parts {
		repo.store[part.ID] = part
	}
	return repo
}

func (r *fakePartRepo) Create(ctx context.Context, part *domain.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[part.ID] = *part
	return nil
}

func (r *fakePartRepo) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	part, ok := r.store[id]
	if !ok {
		return nil, apperrors.NewNotFound("part", map[string]any{"id": id})
	}
	copied := part
	return &copied, nil
}

func (r *fakePartRepo) List(ctx context.Context, limit, offset int64) ([]domain.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Part, 0, len(r.store))
	for _, part := range r.store {
		out = append(out, part)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePartRepo) Update(ctx context.Context, part *domain.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[part.ID] = *part
	return nil
}

func (r *fakePartRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeLease struct {
	mu       sync.Mutex
	held     map[string]string
	acquired int
	released int
}

func newFakeLease() *fakeLease {
	return &fakeLease{held: make(map[string]string)}
}

func (l *fakeLease) Acquire(ctx context.Context, requestID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[requestID]; ok {
		return "", apperrors.NewConcurrencyConflict("request lease", map[string]any{"request_id": requestID})
	}
	token := "token-" + requestID
	l.held[requestID] = token
	l.acquired++
	return token, nil
}

func (l *fakeLease) Release(ctx context.Context, requestID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[requestID] == token {
		delete(l.held, requestID)
		l.released++
	}
	return nil
}
