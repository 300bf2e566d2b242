package http

import (
	"net/http"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/usecase/draft"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DraftHandler struct {
	uc  *draft.Usecase
	log *zap.Logger
}

func NewDraftHandler(uc *draft.Usecase, log *zap.Logger) *DraftHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DraftHandler{uc: uc, log: log}
}

type addDraftReq struct {
	ChangeType  string         `json:"change_type"  validate:"required"`
	TargetTable string         `json:"target_table" validate:"required,max=64"`
	TargetID    *string        `json:"target_id"    validate:"omitempty,max=64"`
	ChangeData  map[string]any `json:"change_data"`
	Notes       *string        `json:"notes"        validate:"omitempty,max=2000"`
}

type updateDraftReq struct {
	ChangeType  *string        `json:"change_type"`
	TargetTable *string        `json:"target_table" validate:"omitempty,max=64"`
	TargetID    *string        `json:"target_id"    validate:"omitempty,max=64"`
	ChangeData  map[string]any `json:"change_data"`
	Notes       *string        `json:"notes"        validate:"omitempty,max=2000"`
}

type submitReq struct {
	IDs []string `json:"ids" validate:"omitempty,max=500,dive,required,hex32"`
}

func (h *DraftHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	out, err := h.uc.ListMine(ctx, identity.FromContext(ctx))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DraftHandler) Add(c echo.Context) error {
	var req addDraftReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	dto, err := h.uc.Add(ctx, identity.FromContext(ctx), draft.AddInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *DraftHandler) Update(c echo.Context) error {
	changeID := c.Param("id")
	if changeID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	var req updateDraftReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	dto, err := h.uc.Update(ctx, identity.FromContext(ctx), changeID, draft.UpdateInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DraftHandler) Delete(c echo.Context) error {
	changeID := c.Param("id")
	if changeID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	ctx := c.Request().Context()
	if err := h.uc.Delete(ctx, identity.FromContext(ctx), changeID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Submit accepts an optional {"ids": [...]}; an empty body submits every draft.
func (h *DraftHandler) Submit(c echo.Context) error {
	var req submitReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	res, err := h.uc.Submit(ctx, identity.FromContext(ctx), req.IDs)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}
