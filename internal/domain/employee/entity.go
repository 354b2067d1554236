package employee

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusOnLeave  Status = "on_leave"
	StatusResigned Status = "resigned"
	StatusInactive Status = "inactive"
)

var Statuses = []string{string(StatusActive), string(StatusOnLeave), string(StatusResigned), string(StatusInactive)}

type Employee struct {
	ID              string
	UserID          *string
	EmployeeNumber  string
	FirstName       string
	LastName        string
	Email           *string
	Phone           *string
	Position        *string
	Department      string
	Campaign        string
	Status          Status
	JoinDate        *time.Time
	LastWorkingDate *time.Time
	PersonalEmail   *string
	EmergencyName   *string
	EmergencyPhone  *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Stats summarises the directory.
type Stats struct {
	Total           int64            `json:"total"`
	ByStatus        map[string]int64 `json:"by_status"`
	ByCampaign      map[string]int64 `json:"by_campaign"`
	ByDepartment    map[string]int64 `json:"by_department"`
	JoinedThisMonth int64            `json:"joined_this_month"`
}
