package usecase

import "github.com/ekipteam/ekip/internal/core/domain"

// vectorAccessFilter derives the native vector-store predicate from the
// user's roles. Admin means unrestricted visibility, expressed as no filter.
func vectorAccessFilter(user domain.UserContext) *domain.AccessFilter {
	if user.IsAdmin() {
		return nil
	}
	return &domain.AccessFilter{AnyRole: user.Roles}
}

// filterKeywordHits applies the rules the keyword backend cannot express
// natively: the optional department narrowing and the role-based visibility
// check. This is the sole enforcement point for keyword results; no hit may
// reach fusion without passing here. The caller's limit caps the output
// because the backend over-fetches.
func filterKeywordHits(hits []domain.Candidate, user domain.UserContext, department string, limit int) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(hits))
	for _, hit := range hits {
		if department != "" && hit.Department != department {
			continue
		}
		if !userMaySee(user, hit) {
			continue
		}
		out = append(out, hit)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func userMaySee(user domain.UserContext, hit domain.Candidate) bool {
	if user.IsAdmin() {
		return true
	}
	if hit.Classification != domain.ClassificationRestricted {
		return true
	}
	return user.HasRole(domain.RoleForDepartment(hit.Department))
}
