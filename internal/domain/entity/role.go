package entity

import "strings"

// DefaultTokenRole is the role claim issued for accounts without a stored role.
const DefaultTokenRole = "user"

// RoleClass groups the free-form role strings found in stored accounts.
type RoleClass int

const (
	// RoleClassUnranked covers roles that never take part in login resolution.
	RoleClassUnranked RoleClass = iota
	RoleClassAdmin
	RoleClassRecruiter
	// RoleClassCandidate merges the "candidate" and "student" synonyms.
	RoleClassCandidate
)

// RolePriority is the fixed order in which role classes win login resolution.
var RolePriority = []RoleClass{RoleClassAdmin, RoleClassRecruiter, RoleClassCandidate}

// String returns the canonical name of the class.
func (c RoleClass) String() string {
	switch c {
	case RoleClassAdmin:
		return "admin"
	case RoleClassRecruiter:
		return "recruiter"
	case RoleClassCandidate:
		return "candidate"
	default:
		return "unranked"
	}
}

// RoleClassOf classifies a stored role string case-insensitively.
func RoleClassOf(role string) RoleClass {
	r := strings.ToLower(strings.TrimSpace(role))

	switch {
	case r == "":
		return RoleClassUnranked
	case strings.Contains(r, "admin"):
		return RoleClassAdmin
	case strings.Contains(r, "recruiter"):
		return RoleClassRecruiter
	case strings.Contains(r, "candidate"), strings.Contains(r, "student"):
		return RoleClassCandidate
	default:
		return RoleClassUnranked
	}
}
