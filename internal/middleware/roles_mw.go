package middleware

import (
	"net/http"

	"meds_buddy/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not found in token, ensure JWT middleware runs first"})
			return
		}

		userRole, ok := roleVal.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid role type in token"})
			return
		}

		isAllowed := false
		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}

		c.Next()
	}
}

// KnownRoleMiddleware allows any account with one of the recognized roles.
// Tokens carrying an unknown role claim are rejected even if the signature
// is valid.
func KnownRoleMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RolePatient, model.RoleCaretaker)
}

// PatientMiddleware checks that the user has the 'patient' role
func PatientMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RolePatient)
}

// CaretakerMiddleware checks that the user has the 'caretaker' role
func CaretakerMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleCaretaker)
}
