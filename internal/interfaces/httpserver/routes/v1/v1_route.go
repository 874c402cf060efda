package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formgrid/forms-api/internal/interfaces/httpserver/routes/v1/forms"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/routes/v1/notifications"
)

type V1Route struct {
	forms         *forms.FormRoute
	notifications *notifications.NotificationRoute
}

func NewV1Route(
	formRoute *forms.FormRoute,
	notificationRoute *notifications.NotificationRoute,
) *V1Route {
	return &V1Route{
		forms:         formRoute,
		notifications: notificationRoute,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/healthz", GetHealthz)
	v1Router.GET("/readyz", GetReadyz)

	v1Route.forms.RegisterRouter(v1Router)
	v1Route.notifications.RegisterRouter(v1Router)
}

// GetHealthz reports liveness for orchestrators and monitors.
func GetHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetReadyz reports readiness to receive traffic.
func GetReadyz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
