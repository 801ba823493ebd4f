package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/meinhoongagan/carehub/models"
)

// SetupAdminRoutes configures admin routes guarded by persisted permissions
func SetupAdminRoutes(app *fiber.App, h *Handlers) {
	admin := app.Group("/admin", h.Protected, middleware.RequireRole(models.RoleAdmin))

	approvals := admin.Group("/caregivers", h.permission(models.PermissionCaregiverApproval))
	approvals.Get("/pending", h.Approvals.Pending)
	approvals.Get("/approved", h.Approvals.Approved)
	approvals.Post("/:id/approve", h.Approvals.Approve)
	approvals.Post("/:id/reject", h.Approvals.Reject)

	admins := admin.Group("/admins", h.permission(models.PermissionAdminManagement))
	admins.Get("/", h.Permissions.ListAdmins)
	admins.Post("/", h.Permissions.CreateAdmin)
	admins.Delete("/:id", h.Permissions.RemoveAdmin)
	admins.Post("/:id/permissions", h.Permissions.AddPermission)
	admins.Delete("/:id/permissions/:permission", h.Permissions.RemovePermission)

	users := admin.Group("/users", h.permission(models.PermissionUserManagement))
	users.Get("/", h.Users.List)
	users.Post("/:id/verify", h.Users.Verify)

	services := admin.Group("/services", h.permission(models.PermissionSystemSettings))
	services.Get("/", h.Services.GetAllServices)
	services.Post("/", h.Services.CreateService)
	services.Put("/:id", h.Services.UpdateService)
	services.Patch("/:id/active", h.Services.SetActive)
	services.Delete("/:id", h.Services.DeleteService)
}
