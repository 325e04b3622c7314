package domain

import "time"

type Classification string

const (
	ClassificationPublic     Classification = "public"
	ClassificationRestricted Classification = "restricted"
)

func (c Classification) Valid() bool {
	return c == ClassificationPublic || c == ClassificationRestricted
}

const (
	RoleAdmin    = "Admin"
	RoleEmployee = "Employee"
	RoleHR       = "HR"
	RoleEngineer = "Engineer"
	RoleSales    = "Sales"
)

// AllRoles is the full role set granted to public chunks.
func AllRoles() []string {
	return []string{RoleEmployee, RoleHR, RoleEngineer, RoleSales, RoleAdmin}
}

// RoleForDepartment maps a department name to the role required to read
// its restricted documents. Unknown departments fall back to Employee.
func RoleForDepartment(department string) string {
	switch department {
	case "HR":
		return RoleHR
	case "Engineering":
		return RoleEngineer
	case "Sales":
		return RoleSales
	default:
		return RoleEmployee
	}
}

// AccessRolesFor derives the role set entitled to see a chunk of the given
// document. Public documents are visible to every role; restricted documents
// only to the owning department's role and Admin.
func AccessRolesFor(classification Classification, department string) []string {
	if classification == ClassificationPublic {
		return AllRoles()
	}
	return []string{RoleForDepartment(department), RoleAdmin}
}

type Document struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Department     string         `json:"department"`
	Classification Classification `json:"classification"`
	FilePath       string         `json:"file_path"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ManifestEntry is one row of the ingestion manifest.
type ManifestEntry struct {
	Path           string         `json:"path"`
	Title          string         `json:"title"`
	Department     string         `json:"department"`
	Classification Classification `json:"classification"`
}

// Segment is a parsed unit of source text, typically one page.
type Segment struct {
	Text string
	Page int
}
