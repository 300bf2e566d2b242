package http

import (
	"net/http"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/usecase/executor"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/usecase/review"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	uc  *review.Usecase
	log *zap.Logger
}

func NewReviewHandler(uc *review.Usecase, log *zap.Logger) *ReviewHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewHandler{uc: uc, log: log}
}

type reviewReq struct {
	ChangeIDs   []string `json:"changeIds"   validate:"required,min=1,max=500,dive,required,hex32"`
	Action      string   `json:"action"      validate:"required,oneof=approve reject"`
	ReviewNotes *string  `json:"reviewNotes" validate:"omitempty,max=2000"`
}

type decideReq struct {
	ChangeIDs   []string `json:"changeIds"   validate:"required,min=1,max=500,dive,required,hex32"`
	ReviewNotes *string  `json:"reviewNotes" validate:"omitempty,max=2000"`
}

func (h *ReviewHandler) ListPending(c echo.Context) error {
	ctx := c.Request().Context()
	out, err := h.uc.ListPending(ctx, identity.FromContext(ctx))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	out, err := h.uc.ListAll(ctx, identity.FromContext(ctx))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) ListAudit(c echo.Context) error {
	ctx := c.Request().Context()
	out, err := h.uc.ListAudit(ctx, identity.FromContext(ctx))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// bindAdmin rejects non-admins before the body is looked at.
func (h *ReviewHandler) bindAdmin(c echo.Context, req any) (bool, error) {
	if err := identity.FromContext(c.Request().Context()).RequireAdmin(); err != nil {
		return false, respondError(c, h.log, err)
	}
	return bindAndValidate(c, req)
}

// Review is the single executor entry point: {changeIds, action, reviewNotes}.
func (h *ReviewHandler) Review(c echo.Context) error {
	var req reviewReq
	if ok, err := h.bindAdmin(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	res, err := h.uc.Review(ctx, identity.FromContext(ctx), executor.Input{
		ChangeIDs:   req.ChangeIDs,
		Action:      executor.Action(req.Action),
		ReviewNotes: req.ReviewNotes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReviewHandler) Approve(c echo.Context) error {
	var req decideReq
	if ok, err := h.bindAdmin(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	res, err := h.uc.Approve(ctx, identity.FromContext(ctx), req.ChangeIDs, req.ReviewNotes)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReviewHandler) Reject(c echo.Context) error {
	var req decideReq
	if ok, err := h.bindAdmin(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	res, err := h.uc.Reject(ctx, identity.FromContext(ctx), req.ChangeIDs, req.ReviewNotes)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}
