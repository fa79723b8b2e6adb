package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/service"
)

type OwnerHandler struct {
	Stores *service.StoreService
}

func NewOwnerHandler(stores *service.StoreService) *OwnerHandler {
	if stores == nil {
		panic("nil store service passed to NewOwnerHandler")
	}
	return &OwnerHandler{Stores: stores}
}

// Dashboard: GET /api/owner/dashboard for the calling owner.
func (h *OwnerHandler) Dashboard(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.Stores.OwnerDashboard(ctx, id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}
