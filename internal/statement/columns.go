package statement

import (
	"strings"
)

// Role names the semantic transaction fields column inference can bind.
const (
	RoleDate     = "date"
	RoleAmount   = "amount"
	RoleMerchant = "merchant"
	RoleCategory = "category"
)

// roleKeywords lists, per role, the header keywords in priority order. The
// scan is plain substring containment against the lowercased header — no
// fuzzy matching, by observed exporter behavior the simple heuristic is what
// callers depend on.
var roleKeywords = map[string][]string{
	RoleDate:     {"date", "transaction date", "posted date", "trans date", "payment date"},
	RoleAmount:   {"amount", "transaction amount", "debit", "credit", "posted amount"},
	RoleMerchant: {"description", "merchant", "transaction description", "payee", "memo"},
	RoleCategory: {"category", "transaction category", "type", "transaction type"},
}

// requiredRoles must all be bound for a mapping to be usable; category is
// optional.
var requiredRoles = []string{RoleDate, RoleAmount, RoleMerchant}

// RoleKeywords returns the header keywords recognized per role, in priority
// order. Callers get a copy they may modify.
func RoleKeywords() map[string][]string {
	out := make(map[string][]string, len(roleKeywords))
	for role, kws := range roleKeywords {
		out[role] = append([]string(nil), kws...)
	}
	return out
}

// ColumnMapping binds semantic roles to raw header names as they appeared in
// the source file.
type ColumnMapping map[string]string

// InferColumns assigns at most one source column to each role. For each role
// independently: walk the keyword list in priority order, and for each
// keyword scan headers left to right; the first header containing the first
// matching keyword wins and ends the search for that role. Roles with no
// match are left unbound.
func InferColumns(headers []string) ColumnMapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	mapping := make(ColumnMapping)
	for role, keywords := range roleKeywords {
		for _, kw := range keywords {
			matched := false
			for i, h := range normalized {
				if strings.Contains(h, kw) {
					mapping[role] = headers[i]
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
	}
	return mapping
}

// MissingRoles returns the required roles the mapping failed to bind, in a
// fixed report order. The merchant role is reported as
// "merchant/description" to match what users see in their files.
func (m ColumnMapping) MissingRoles() []string {
	var missing []string
	for _, role := range requiredRoles {
		if _, ok := m[role]; !ok {
			if role == RoleMerchant {
				missing = append(missing, "merchant/description")
			} else {
				missing = append(missing, role)
			}
		}
	}
	return missing
}
