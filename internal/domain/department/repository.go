package department

import "context"

type DepartmentRepository interface {
	List(ctx context.Context, filter DepartmentFilter) ([]Department, int64, error)
	// ListAll returns every department, only active ones when activeOnly is set.
	ListAll(ctx context.Context, activeOnly bool) ([]Department, error)
	GetByID(ctx context.Context, id string) (Department, error)
	Children(ctx context.Context, id string) ([]Ref, error)
	// AncestorIDs walks parent links upwards from id, nearest first.
	AncestorIDs(ctx context.Context, id string) ([]string, error)
	Create(ctx context.Context, d Department) (Department, error)
	Update(ctx context.Context, req UpdateDepartmentRequest) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)

	AddMember(ctx context.Context, departmentID string, req AddMemberRequest) error
	RemoveMember(ctx context.Context, departmentID, userID string) error
	ListMembers(ctx context.Context, departmentID string) ([]Member, error)
}
