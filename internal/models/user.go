package models

import "time"

type Role string

const (
	RoleTeamLead   Role = "team_lead"
	RoleTeamMember Role = "team_member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleTeamLead || r == RoleTeamMember
}

// User is stored as an element of the "users" collection. The password is kept
// in plain text and compared verbatim on login.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) IsTeamLead() bool {
	return u.Role == RoleTeamLead
}
