package submissionhandler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/formgrid/forms-api/internal/domain/submission"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/middlewares"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/requests/submissionreq"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/responses"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/responses/submissionres"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// SubmissionHandler handles submission-related HTTP requests
type SubmissionHandler struct {
	submissionService *submission.Service
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *submission.Service) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Submit handles POST /v1/forms/:form_public_id/submissions. Auth is
// optional; an authenticated respondent's identity is attached for duplicate
// detection on forms that require it.
func (h *SubmissionHandler) Submit(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req submissionreq.SubmitRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	var userID *uint
	if u := middlewares.UserFromContext(reqCtx); u != nil {
		userID = &u.ID
	}

	input := submission.SubmitInput{
		Data:           req.Data,
		IPAddress:      reqCtx.ClientIP(),
		UserAgent:      reqCtx.Request.UserAgent(),
		TimeToComplete: req.TimeToComplete,
	}

	created, err := h.submissionService.Submit(ctx, reqCtx.Param("form_public_id"), input, userID)
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusCreated, submissionres.NewSubmissionAcceptedResponse(created.PublicID))
}

// ListSubmissions handles GET /v1/forms/:form_public_id/submissions
func (h *SubmissionHandler) ListSubmissions(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "f8081929-3a4b-456d-f809-2a3b4c5d6e07")
		return
	}

	formPublicID := reqCtx.Param("form_public_id")
	subs, total, err := h.submissionService.ListByForm(ctx, formPublicID, u.ID, paginationFromQuery(reqCtx))
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, submissionres.NewSubmissionListResponse(formPublicID, subs, total))
}

// DeleteSubmission handles DELETE /v1/forms/:form_public_id/submissions/:submission_public_id
func (h *SubmissionHandler) DeleteSubmission(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "091a2a3b-4c5d-467e-0912-3b4c5d6e7f18")
		return
	}

	submissionPublicID := reqCtx.Param("submission_public_id")
	if err := h.submissionService.Delete(ctx, reqCtx.Param("form_public_id"), submissionPublicID, u.ID); err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, submissionres.NewSubmissionDeletedResponse(submissionPublicID))
}

// TestWebhook handles POST /v1/forms/:form_public_id/webhook/test. Sends a
// synchronous test event so owners can verify their endpoint and signature.
func (h *SubmissionHandler) TestWebhook(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "1a2b3b4c-5d6e-478f-1a23-4c5d6e7f8029")
		return
	}

	delivered, err := h.submissionService.SendTestWebhook(ctx, reqCtx.Param("form_public_id"), u.ID)
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, &submissionres.WebhookTestResponse{Object: "webhook_test", Delivered: delivered})
}

func paginationFromQuery(reqCtx *gin.Context) *submission.Pagination {
	limit, err := strconv.Atoi(reqCtx.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(reqCtx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return &submission.Pagination{Limit: limit, Offset: offset}
}
