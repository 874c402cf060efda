package notifications

import (
	"github.com/gin-gonic/gin"

	"github.com/formgrid/forms-api/internal/interfaces/httpserver/handlers/notificationhandler"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/middlewares"
)

// NotificationRoute handles routing for owner notification streams
type NotificationRoute struct {
	handler *notificationhandler.NotificationHandler
	authn   *middlewares.Authenticator
}

// NewNotificationRoute creates a new notification route handler
func NewNotificationRoute(handler *notificationhandler.NotificationHandler, authn *middlewares.Authenticator) *NotificationRoute {
	return &NotificationRoute{handler: handler, authn: authn}
}

// RegisterRouter registers notification routes under /notifications.
func (route *NotificationRoute) RegisterRouter(router gin.IRouter) {
	notifications := router.Group("/notifications", route.authn.Required())
	notifications.GET("/stream", route.handler.Stream)
}
