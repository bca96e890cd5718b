package model

import "fmt"

// Role is the closed set of account roles. Roles form a total order:
// client < teacher < admin < superadmin.
type Role string

const (
	RoleClient     Role = "client"
	RoleTeacher    Role = "teacher"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

var roleRanks = map[Role]int{
	RoleClient:     0,
	RoleTeacher:    1,
	RoleAdmin:      2,
	RoleSuperadmin: 3,
}

func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if _, ok := roleRanks[role]; !ok {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

func (r Role) Rank() int {
	return roleRanks[r]
}

// Satisfies reports whether r grants at least the permissions of required.
// Unknown roles rank lowest.
func (r Role) Satisfies(required Role) bool {
	return roleRanks[r] >= roleRanks[required]
}

func (r Role) IsSuperadmin() bool {
	return r == RoleSuperadmin
}

func (r Role) IsAdmin() bool {
	return r.Satisfies(RoleAdmin)
}

func (r Role) IsTeacher() bool {
	return r.Satisfies(RoleTeacher)
}
