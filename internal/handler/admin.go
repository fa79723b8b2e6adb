package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/service"
)

// AdminHandler serves the /api/admin routes. Every route is mounted
// behind RequireRole(ADMIN).
type AdminHandler struct {
	Admin  *service.AdminService
	Stores *service.StoreService
}

func NewAdminHandler(admin *service.AdminService, stores *service.StoreService) *AdminHandler {
	if admin == nil || stores == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Admin: admin, Stores: stores}
}

func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.Admin.Stats(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// ListUsers: GET /api/admin/users?role=&name=&email=&address=&sortBy=&order=
func (h *AdminHandler) ListUsers(c echo.Context) error {
	in := service.ListUsersInput{
		Role:    c.QueryParam("role"),
		Name:    c.QueryParam("name"),
		Email:   c.QueryParam("email"),
		Address: c.QueryParam("address"),
		SortBy:  c.QueryParam("sortBy"),
		Order:   c.QueryParam("order"),
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.Admin.ListUsers(ctx, in)
	if err != nil {
		return err
	}
	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, toUserJSON(u))
	}
	return c.JSON(http.StatusOK, out)
}

type userDetailJSON struct {
	userJSON
	AverageRating *float64 `json:"averageRating,omitempty"`
}

// GetUser includes the aggregate rating when the user is an owner.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.Admin.GetUser(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userDetailJSON{userJSON: toUserJSON(d.User), AverageRating: d.Rating})
}

type roleReq struct {
	Role string `json:"role"`
}

func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req roleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Admin.UpdateUserRole(ctx, id, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserJSON(u))
}

// UserRating: GET /api/admin/users/:id/rating, owners only.
func (h *AdminHandler) UserRating(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	avg, err := h.Stores.UserAggregateRating(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"averageRating": avg})
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req service.CreateUserInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Admin.CreateUser(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserJSON(u))
}
