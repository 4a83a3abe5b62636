package models

import "fmt"

// Role is the closed set of capability levels. Moderator roles are scoped
// to a single sport; admin covers every sport.
type Role string

const (
	RoleAdmin               Role = "admin"
	RolePlayer              Role = "player"
	RoleModeratorSoccer     Role = "moderator_soccer"
	RoleModeratorVolleyball Role = "moderator_volleyball"
)

// moderatedSport maps each sport-scoped moderator role to the sport name
// it is allowed to manage.
var moderatedSport = map[Role]string{
	RoleModeratorSoccer:     "Soccer",
	RoleModeratorVolleyball: "Volleyball",
}

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RolePlayer, RoleModeratorSoccer, RoleModeratorVolleyball:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// CanModerate reports whether the role may manage confirmations, guests and
// the waiting list for games of the named sport.
func (r Role) CanModerate(sportName string) bool {
	if r == RoleAdmin {
		return true
	}
	return moderatedSport[r] == sportName
}
