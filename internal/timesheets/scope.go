package timesheets

import "github.com/upteky/upteky-central/internal/authz"

// ScopeEntries computes the subset of entries visible to the actor.
// Admin and HR see everything. A Team Lead sees their own entries plus
// those of their resolved reports; a lead with no reports degrades to
// self-scope. Every other role sees only entries they own.
//
// The filter is deterministic and side-effect-free: the input slice is
// never mutated and the subset preserves the original relative order.
func ScopeEntries(actor authz.Actor, reports map[string]struct{}, entries []Entry) []Entry {
	switch actor.Role {
	case authz.RoleAdmin, authz.RoleHR:
		out := make([]Entry, len(entries))
		copy(out, entries)
		return out
	case authz.RoleTeamLead:
		out := make([]Entry, 0, len(entries))
		for _, entry := range entries {
			if entry.UserID == actor.UserID {
				out = append(out, entry)
				continue
			}
			if _, ok := reports[entry.UserID]; ok {
				out = append(out, entry)
			}
		}
		return out
	default:
		out := make([]Entry, 0, len(entries))
		for _, entry := range entries {
			if entry.UserID == actor.UserID {
				out = append(out, entry)
			}
		}
		return out
	}
}
