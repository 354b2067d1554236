package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bpo-ops/ops-backend-go/internal/domain/attendance"
	"github.com/bpo-ops/ops-backend-go/internal/domain/auth"
	"github.com/bpo-ops/ops-backend-go/internal/domain/department"
	"github.com/bpo-ops/ops-backend-go/internal/domain/document"
	"github.com/bpo-ops/ops-backend-go/internal/domain/employee"
	"github.com/bpo-ops/ops-backend-go/internal/domain/nte"
	"github.com/bpo-ops/ops-backend-go/internal/domain/schedule"
	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/storage"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/tabular"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrRefreshTokenCookieNotFound),
		errors.Is(err, auth.ErrStateMismatch):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrAccountInactive),
		errors.Is(err, auth.ErrGoogleAccountNotRegistered):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		NotFound(w, "User not found")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrAdminAccessRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrCannotDeleteSelf):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeNumberExists):
		Conflict(w, "Employee number already exists")
	case errors.Is(err, employee.ErrLinkedUserNotFound):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrLastWorkingBeforeJoin):
		BadRequest(w, err.Error(), nil)

	// Department domain errors
	case errors.Is(err, department.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, department.ErrMemberNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, department.ErrParentNotFound),
		errors.Is(err, department.ErrManagerNotFound),
		errors.Is(err, department.ErrCircularParent):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, department.ErrDepartmentCodeExists),
		errors.Is(err, department.ErrDepartmentHasChildren),
		errors.Is(err, department.ErrDepartmentInUse):
		Conflict(w, err.Error())

	// Workflow domain errors
	case errors.Is(err, workflow.ErrProcessNotFound),
		errors.Is(err, workflow.ErrWorkflowNotFound),
		errors.Is(err, workflow.ErrInstanceNotFound),
		errors.Is(err, workflow.ErrTaskNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, workflow.ErrDepartmentNotFound),
		errors.Is(err, workflow.ErrAssigneeNotFound),
		errors.Is(err, workflow.ErrWorkflowNotActive),
		errors.Is(err, workflow.ErrWorkflowNoStages),
		errors.Is(err, workflow.ErrTaskRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, workflow.ErrProcessCodeExists),
		errors.Is(err, workflow.ErrProcessInUse),
		errors.Is(err, workflow.ErrWorkflowCodeExists),
		errors.Is(err, workflow.ErrWorkflowInUse),
		errors.Is(err, workflow.ErrWorkflowNotDraft),
		errors.Is(err, workflow.ErrStageCodeExists),
		errors.Is(err, workflow.ErrInstanceClosed),
		errors.Is(err, workflow.ErrTaskAlreadyDone),
		errors.Is(err, workflow.ErrTaskNotActive):
		Conflict(w, err.Error())

	// Schedule domain errors
	case errors.Is(err, schedule.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, schedule.ErrEmployeeNotFound):
		BadRequest(w, "Employee not found", nil)
	case errors.Is(err, schedule.ErrInvalidShiftCode),
		errors.Is(err, schedule.ErrInvalidDateRange),
		errors.Is(err, schedule.ErrMissingColumns):
		BadRequest(w, err.Error(), nil)

	// Uploads
	case errors.Is(err, tabular.ErrUnsupportedFormat),
		errors.Is(err, tabular.ErrEmptySheet):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, tabular.ErrTooLarge):
		TooLarge(w, err.Error())

	// Spreadsheet-backed domains
	case errors.Is(err, attendance.ErrRecordNotFound),
		errors.Is(err, attendance.ErrTeamMemberAbsent),
		errors.Is(err, nte.ErrFormNotFound),
		errors.Is(err, document.ErrFormNotFound),
		errors.Is(err, workbook.ErrRecordNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrDuplicateRecord),
		errors.Is(err, attendance.ErrTeamMemberExists):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, attendance.ErrInvalidMonth),
		errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, nte.ErrMissingID),
		errors.Is(err, nte.ErrUnknownAction),
		errors.Is(err, document.ErrNoData),
		errors.Is(err, document.ErrInvalidImageType):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "File not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
