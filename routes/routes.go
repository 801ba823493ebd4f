package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/controllers"
	"github.com/meinhoongagan/carehub/controllers/caregiver"
	"github.com/meinhoongagan/carehub/controllers/consumer"
	"github.com/meinhoongagan/carehub/middleware"
	"github.com/rs/zerolog"
)

// Handlers bundles every controller and the guards shared by the route groups.
type Handlers struct {
	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Services      *controllers.ServiceController
	Bookings      *controllers.BookingController
	Notifications *controllers.NotificationController
	Permissions   *controllers.PermissionController
	Approvals     *controllers.ApprovalController
	Dashboard     *controllers.DashboardController
	Health        *controllers.HealthController
	Caregivers    *consumer.CaregiverController
	Reviews       *consumer.ReviewController
	Caregiver     *caregiver.Controller

	Protected fiber.Handler
	Checker   middleware.PermissionChecker
	Logger    *zerolog.Logger
}

func (h *Handlers) permission(name string) fiber.Handler {
	return middleware.RequirePermission(h.Checker, name, h.Logger)
}

// Setup registers every route group.
func Setup(app *fiber.App, h *Handlers) {
	SetupHealthRoutes(app, h)
	SetupAuthRoutes(app, h)
	SetupConsumerRoutes(app, h)
	SetupServiceRoutes(app, h)
	SetupCaregiverRoutes(app, h)
	SetupBookingRoutes(app, h)
	SetupAdminRoutes(app, h)
}
