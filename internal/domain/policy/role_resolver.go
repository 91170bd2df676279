// Package policy holds the pure decision rules of the authentication core:
// which account a login targets and how failures escalate to a lockout.
package policy

import "jobportal/internal/domain/entity"

// ResolveAccount picks the single account a login identifier authenticates
// against. Candidates are grouped by entity.RolePriority and the first
// non-empty class wins. Inside that class an account with a stored password is
// preferred, newest UpdatedAt first; ID breaks remaining ties so the choice
// never depends on input order. It returns nil when nothing qualifies.
func ResolveAccount(accounts []*entity.Account) *entity.Account {
	for _, class := range entity.RolePriority {
		var withHash, fallback *entity.Account
		for _, acc := range accounts {
			if acc == nil || entity.RoleClassOf(acc.Role) != class {
				continue
			}
			if newer(acc, fallback) {
				fallback = acc
			}
			if acc.HasPassword() && newer(acc, withHash) {
				withHash = acc
			}
		}

		if withHash != nil {
			return withHash
		}
		if fallback != nil {
			return fallback
		}
	}

	return nil
}

func newer(candidate, current *entity.Account) bool {
	if current == nil {
		return true
	}
	if !candidate.UpdatedAt.Equal(current.UpdatedAt) {
		return candidate.UpdatedAt.After(current.UpdatedAt)
	}

	return candidate.ID > current.ID
}
