package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusfix/hostel-desk/internal/domain"
	apperrors "github.com/campusfix/hostel-desk/pkg/errorutil"
)

// RequireRoles ensures the principal holds one of the allowed roles.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role()]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireTriage admits the roles that may assign tickets and change status.
func RequireTriage() fiber.Handler {
	return RequireRoles(domain.RoleStaff, domain.RoleAdmin)
}
