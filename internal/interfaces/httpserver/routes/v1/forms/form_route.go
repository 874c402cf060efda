package forms

import (
	"github.com/gin-gonic/gin"

	"github.com/formgrid/forms-api/internal/interfaces/httpserver/handlers/formhandler"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/handlers/submissionhandler"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/middlewares"
)

// FormRoute handles routing for form and submission endpoints
type FormRoute struct {
	formHandler       *formhandler.FormHandler
	submissionHandler *submissionhandler.SubmissionHandler
	authn             *middlewares.Authenticator
}

// NewFormRoute creates a new form route handler
func NewFormRoute(
	formHandler *formhandler.FormHandler,
	submissionHandler *submissionhandler.SubmissionHandler,
	authn *middlewares.Authenticator,
) *FormRoute {
	return &FormRoute{
		formHandler:       formHandler,
		submissionHandler: submissionHandler,
		authn:             authn,
	}
}

// RegisterRouter registers form routes under /forms.
func (route *FormRoute) RegisterRouter(router gin.IRouter) {
	forms := router.Group("/forms")

	// Public fill endpoints. Submit accepts an optional bearer token so
	// authenticated respondents keep their identity for duplicate detection.
	forms.GET("/slug/:slug", route.formHandler.GetFormBySlug)
	forms.POST("/:form_public_id/preview-logic", route.formHandler.PreviewLogic)
	forms.POST("/:form_public_id/submissions", route.authn.Optional(), route.submissionHandler.Submit)

	// Owner endpoints
	owner := forms.Group("", route.authn.Required())
	owner.POST("", route.formHandler.CreateForm)
	owner.GET("", route.formHandler.ListForms)
	owner.GET("/:form_public_id", route.formHandler.GetForm)
	owner.PATCH("/:form_public_id", route.formHandler.UpdateForm)
	owner.DELETE("/:form_public_id", route.formHandler.DeleteForm)
	owner.POST("/:form_public_id/status", route.formHandler.UpdateStatus)
	owner.PUT("/:form_public_id/steps", route.formHandler.ReplaceSteps)
	owner.GET("/:form_public_id/submissions", route.submissionHandler.ListSubmissions)
	owner.DELETE("/:form_public_id/submissions/:submission_public_id", route.submissionHandler.DeleteSubmission)
	owner.POST("/:form_public_id/webhook/test", route.submissionHandler.TestWebhook)
}
