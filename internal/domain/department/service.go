package department

import "context"

type DepartmentService interface {
	List(ctx context.Context, filter DepartmentFilter) (ListDepartmentResponse, error)
	Tree(ctx context.Context) ([]TreeNode, error)
	Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	Get(ctx context.Context, id string) (DepartmentDetailResponse, error)
	Update(ctx context.Context, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, departmentID string, req AddMemberRequest) ([]Member, error)
	RemoveMember(ctx context.Context, departmentID, userID string) error
	ListMembers(ctx context.Context, departmentID string) ([]Member, error)
}
