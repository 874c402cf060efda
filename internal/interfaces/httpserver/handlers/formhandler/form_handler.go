package formhandler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/formgrid/forms-api/internal/domain/form"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/middlewares"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/requests/formreq"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/responses"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/responses/formres"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

// FormHandler handles form-related HTTP requests
type FormHandler struct {
	formService *form.Service
}

// NewFormHandler creates a new form handler
func NewFormHandler(formService *form.Service) *FormHandler {
	return &FormHandler{formService: formService}
}

// CreateForm handles POST /v1/forms
func (h *FormHandler) CreateForm(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "70899aa1-b2c3-4de5-7081-92031425364f")
		return
	}

	var req formreq.CreateFormRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	created, err := h.formService.Create(ctx, req.ToInput(), u.ID)
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusCreated, formres.NewFormResponse(created))
}

// ListForms handles GET /v1/forms
func (h *FormHandler) ListForms(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "8199aab2-c3d4-4ef6-8192-0314253647f0")
		return
	}

	var status *form.FormStatus
	if raw := reqCtx.Query("status"); raw != "" {
		s := form.FormStatus(raw)
		switch s {
		case form.FormStatusDraft, form.FormStatusPublished, form.FormStatusClosed, form.FormStatusArchived:
			status = &s
		default:
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "unknown status filter", "92aabbc3-d4e5-4f07-92a3-1425364708f1")
			return
		}
	}

	forms, total, err := h.formService.List(ctx, u.ID, status, paginationFromQuery(reqCtx))
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, formres.NewFormListResponse(forms, total))
}

// GetForm handles GET /v1/forms/:form_public_id
func (h *FormHandler) GetForm(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "a3bbccd4-e5f6-4018-a3b4-2536470819f2")
		return
	}

	f, err := h.formService.GetOwned(ctx, reqCtx.Param("form_public_id"), u.ID)
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, formres.NewFormResponse(f))
}

// GetFormBySlug handles GET /v1/forms/slug/:slug. Public fill view, no auth.
func (h *FormHandler) GetFormBySlug(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	f, err := h.formService.GetBySlug(ctx, reqCtx.Param("slug"))
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, formres.NewPublicFormResponse(f))
}

// UpdateForm handles PATCH /v1/forms/:form_public_id
func (h *FormHandler) UpdateForm(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "b4ccdde5-f607-4129-b4c5-36470819a2f3")
		return
	}

	var req formreq.UpdateFormRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	updated, err := h.formService.Update(ctx, reqCtx.Param("form_public_id"), u.ID, req.ToInput())
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, formres.NewFormResponse(updated))
}

// DeleteForm handles DELETE /v1/forms/:form_public_id
func (h *FormHandler) DeleteForm(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "c5ddeef6-0718-423a-c5d6-470819a2b3f4")
		return
	}

	publicID := reqCtx.Param("form_public_id")
	if err := h.formService.Delete(ctx, publicID, u.ID); err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, formres.NewFormDeletedResponse(publicID))
}

// UpdateStatus handles POST /v1/forms/:form_public_id/status
func (h *FormHandler) UpdateStatus(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "d6eeff07-1829-434b-d6e7-0819a2b3c4f5")
		return
	}

	var req formreq.UpdateStatusRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	updated, err := h.formService.UpdateStatus(ctx, reqCtx.Param("form_public_id"), u.ID, req.Status)
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, formres.NewFormResponse(updated))
}

// ReplaceSteps handles PUT /v1/forms/:form_public_id/steps
func (h *FormHandler) ReplaceSteps(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	u := middlewares.UserFromContext(reqCtx)
	if u == nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "e7ff0718-293a-445c-e7f8-19a2b3c4d5f6")
		return
	}

	var req formreq.UpdateStepsRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	saved, err := h.formService.ReplaceSteps(ctx, reqCtx.Param("form_public_id"), u.ID, req.ToSteps())
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, formres.NewStepsResponse(saved))
}

// PreviewLogic handles POST /v1/forms/:form_public_id/preview-logic. Public so
// fill clients can classify fields against partial answers server-side.
func (h *FormHandler) PreviewLogic(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req formreq.PreviewLogicRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	classification, err := h.formService.PreviewLogic(ctx, reqCtx.Param("form_public_id"), req.Answers)
	if err != nil {
		responses.HandleError(reqCtx, err)
		return
	}

	reqCtx.JSON(http.StatusOK, formres.NewLogicPreviewResponse(classification))
}

func paginationFromQuery(reqCtx *gin.Context) *form.Pagination {
	limit, err := strconv.Atoi(reqCtx.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(reqCtx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return &form.Pagination{Limit: limit, Offset: offset}
}
