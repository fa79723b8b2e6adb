package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/service"
)

// StoreHandler serves store browsing, store creation and rating writes.
type StoreHandler struct {
	Stores *service.StoreService
}

func NewStoreHandler(stores *service.StoreService) *StoreHandler {
	if stores == nil {
		panic("nil store service passed to NewStoreHandler")
	}
	return &StoreHandler{Stores: stores}
}

// List: GET /api/stores?name=&address=&sortBy=&order=
// A caller with a valid token also gets their own rating per store.
func (h *StoreHandler) List(c echo.Context) error {
	in := service.ListStoresInput{
		Name:    c.QueryParam("name"),
		Address: c.QueryParam("address"),
		SortBy:  c.QueryParam("sortBy"),
		Order:   c.QueryParam("order"),
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var viewer *model.Identity
	if id, ok := middleware.Identity(c); ok {
		viewer = &id
	}
	views, err := h.Stores.ListStores(ctx, in, viewer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *StoreHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.Stores.GetStore(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// Create: admin only.
func (h *StoreHandler) Create(c echo.Context) error {
	var req service.CreateStoreInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.Stores.CreateStore(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

type ratingReq struct {
	RatingValue *int `json:"rating_value"`
}

func (h *StoreHandler) SubmitRating(c echo.Context) error {
	return h.writeRating(c, true)
}

func (h *StoreHandler) UpdateRating(c echo.Context) error {
	return h.writeRating(c, false)
}

func (h *StoreHandler) writeRating(c echo.Context, create bool) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}
	storeID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ratingReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.RatingValue == nil {
		return apperr.Validation("rating_value is required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if create {
		r, err := h.Stores.SubmitRating(ctx, id, storeID, *req.RatingValue)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, r)
	}
	r, err := h.Stores.UpdateRating(ctx, id, storeID, *req.RatingValue)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}
