package service

import (
	"strings"

	"github.com/digistall/digistall/internal/core/domain"
)

// ResolveBuyerLogin derives the display identity stamped on a purchase from
// the buyer's session. Priority order: external login, display name, email
// local-part, truncated internal id. The result is never empty because the
// ledger's buyer column is non-nullable.
func ResolveBuyerLogin(s domain.Session) string {
	if login := deref(s.GithubLogin); login != "" {
		return login
	}
	if name := deref(s.Name); name != "" {
		return name
	}
	if email := deref(s.Email); email != "" {
		if local := strings.SplitN(email, "@", 2)[0]; local != "" {
			return local
		}
	}
	id := strings.TrimSpace(s.UserID)
	if id == "" {
		return "anonymous"
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return "user_" + id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
