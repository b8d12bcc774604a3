package request_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"connectaid/internal/domain"
	"connectaid/internal/repository"
)

// memoryRepo mirrors the conditional writes of the SQL repository so the
// service can be exercised under concurrency without a database.
type memoryRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.ServiceRequest
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[uuid.UUID]domain.ServiceRequest{}}
}

func (r *memoryRepo) Create(ctx context.Context, req *domain.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.rows[req.ID] = *req
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || !row.IsActive {
		return nil, nil
	}
	return &row, nil
}

func (r *memoryRepo) List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.ServiceRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ServiceRequest
	for _, row := range r.rows {
		if !row.IsActive {
			continue
		}
		if filter.CreatedBy != nil && row.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.VolunteerID != nil {
			pool := row.Status == domain.StatusOpen && row.AssignedTo == nil && row.CreatedBy != *filter.VolunteerID
			if !pool && !row.IsAssignee(*filter.VolunteerID) {
				continue
			}
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && row.Type != *filter.Type {
			continue
		}
		out = append(out, row)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) UpdateEditable(ctx context.Context, req *domain.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[req.ID]
	if !ok || !row.IsActive || row.Status != domain.StatusOpen {
		return repository.ErrStaleState
	}
	row.Title, row.Description, row.Type = req.Title, req.Description, req.Type
	row.Priority, row.Location = req.Priority, req.Location
	row.ContactInfo, row.Images = req.ContactInfo, req.Images
	r.rows[req.ID] = row
	return nil
}

func (r *memoryRepo) Accept(ctx context.Context, id, volunteerID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || !row.IsActive || row.Status != domain.StatusOpen || row.AssignedTo != nil || row.CreatedBy == volunteerID {
		return repository.ErrStaleState
	}
	row.Status = domain.StatusAccepted
	row.AssignedTo = &volunteerID
	row.AcceptedAt = &at
	r.rows[id] = row
	return nil
}

func (r *memoryRepo) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || !row.IsActive || row.Status != from {
		return repository.ErrStaleState
	}
	row.Status = to
	if completedAt != nil {
		row.CompletedAt = completedAt
	}
	r.rows[id] = row
	return nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id uuid.UUID, requireOpen bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || !row.IsActive || (requireOpen && row.Status != domain.StatusOpen) {
		return repository.ErrStaleState
	}
	row.IsActive = false
	r.rows[id] = row
	return nil
}

func (r *memoryRepo) CountByStatus(ctx context.Context) (*domain.RequestStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var st domain.RequestStats
	for _, row := range r.rows {
		if !row.IsActive {
			continue
		}
		st.Total++
		switch row.Status {
		case domain.StatusOpen:
			st.Open++
		case domain.StatusAccepted:
			st.Accepted++
		case domain.StatusInProgress:
			st.InProgress++
		case domain.StatusCompleted:
			st.Completed++
		}
	}
	return &st, nil
}
