package department

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/domain/department"
	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/jackc/pgx/v5"
)

type DepartmentServiceImpl struct {
	departmentRepo department.DepartmentRepository
	userRepo       user.UserRepository
}

func NewDepartmentService(departmentRepo department.DepartmentRepository, userRepo user.UserRepository) department.DepartmentService {
	return &DepartmentServiceImpl{departmentRepo: departmentRepo, userRepo: userRepo}
}

// List implements department.DepartmentService.
func (s *DepartmentServiceImpl) List(ctx context.Context, filter department.DepartmentFilter) (department.ListDepartmentResponse, error) {
	filter.Params = filter.Params.Normalize()

	departments, total, err := s.departmentRepo.List(ctx, filter)
	if err != nil {
		return department.ListDepartmentResponse{}, err
	}

	out := make([]department.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		out = append(out, department.ToResponse(d))
	}
	return department.ListDepartmentResponse{
		Departments: out,
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  pagination.TotalPages(total, filter.Limit),
	}, nil
}

// Tree implements department.DepartmentService. Inactive departments are left out.
func (s *DepartmentServiceImpl) Tree(ctx context.Context) ([]department.TreeNode, error) {
	all, err := s.departmentRepo.ListAll(ctx, true)
	if err != nil {
		return nil, err
	}
	return department.BuildTree(all), nil
}

// Create implements department.DepartmentService.
func (s *DepartmentServiceImpl) Create(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	d := department.Department{
		Name:        strings.TrimSpace(req.Name),
		Code:        req.Code,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	if req.ParentID != nil && *req.ParentID != "" {
		if _, err := s.departmentRepo.GetByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, department.ErrDepartmentNotFound) {
				return department.DepartmentResponse{}, department.ErrParentNotFound
			}
			return department.DepartmentResponse{}, err
		}
		d.ParentID = req.ParentID
	}
	if req.ManagerID != nil && *req.ManagerID != "" {
		if err := s.checkUser(ctx, *req.ManagerID, department.ErrManagerNotFound); err != nil {
			return department.DepartmentResponse{}, err
		}
		d.ManagerID = req.ManagerID
	}

	created, err := s.departmentRepo.Create(ctx, d)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	slog.Info("Department created", "department_id", created.ID, "code", created.Code)
	return department.ToResponse(created), nil
}

// Get implements department.DepartmentService.
func (s *DepartmentServiceImpl) Get(ctx context.Context, id string) (department.DepartmentDetailResponse, error) {
	d, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return department.DepartmentDetailResponse{}, err
	}
	children, err := s.departmentRepo.Children(ctx, id)
	if err != nil {
		return department.DepartmentDetailResponse{}, err
	}
	members, err := s.departmentRepo.ListMembers(ctx, id)
	if err != nil {
		return department.DepartmentDetailResponse{}, err
	}
	return department.DepartmentDetailResponse{
		DepartmentResponse: department.ToResponse(d),
		Children:           children,
		Members:            members,
	}, nil
}

// Update implements department.DepartmentService.
func (s *DepartmentServiceImpl) Update(ctx context.Context, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}
	if _, err := s.departmentRepo.GetByID(ctx, req.ID); err != nil {
		return department.DepartmentResponse{}, err
	}

	if req.ParentID != nil && *req.ParentID != "" {
		if _, err := s.departmentRepo.GetByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, department.ErrDepartmentNotFound) {
				return department.DepartmentResponse{}, department.ErrParentNotFound
			}
			return department.DepartmentResponse{}, err
		}
		ancestors, err := s.departmentRepo.AncestorIDs(ctx, *req.ParentID)
		if err != nil {
			return department.DepartmentResponse{}, err
		}
		if department.CreatesCycle(req.ID, *req.ParentID, ancestors) {
			return department.DepartmentResponse{}, department.ErrCircularParent
		}
	}
	if req.ManagerID != nil && *req.ManagerID != "" {
		if err := s.checkUser(ctx, *req.ManagerID, department.ErrManagerNotFound); err != nil {
			return department.DepartmentResponse{}, err
		}
	}

	if err := s.departmentRepo.Update(ctx, req); err != nil {
		return department.DepartmentResponse{}, err
	}
	updated, err := s.departmentRepo.GetByID(ctx, req.ID)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return department.ToResponse(updated), nil
}

// Delete implements department.DepartmentService. Departments with children must be emptied first.
func (s *DepartmentServiceImpl) Delete(ctx context.Context, id string) error {
	children, err := s.departmentRepo.Children(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return department.ErrDepartmentHasChildren
	}
	if err := s.departmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Department deleted", "department_id", id)
	return nil
}

// AddMember implements department.DepartmentService and returns the updated member list.
func (s *DepartmentServiceImpl) AddMember(ctx context.Context, departmentID string, req department.AddMemberRequest) ([]department.Member, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.departmentRepo.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, req.UserID, user.ErrUserNotFound); err != nil {
		return nil, err
	}
	if err := s.departmentRepo.AddMember(ctx, departmentID, req); err != nil {
		return nil, err
	}
	return s.departmentRepo.ListMembers(ctx, departmentID)
}

// RemoveMember implements department.DepartmentService.
func (s *DepartmentServiceImpl) RemoveMember(ctx context.Context, departmentID, userID string) error {
	return s.departmentRepo.RemoveMember(ctx, departmentID, userID)
}

// ListMembers implements department.DepartmentService.
func (s *DepartmentServiceImpl) ListMembers(ctx context.Context, departmentID string) ([]department.Member, error) {
	if _, err := s.departmentRepo.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}
	return s.departmentRepo.ListMembers(ctx, departmentID)
}

func (s *DepartmentServiceImpl) checkUser(ctx context.Context, id string, notFound error) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound
		}
		return fmt.Errorf("failed to look up user %s: %w", id, err)
	}
	return nil
}
