// Package seed creates the first administrator and, optionally, a small
// demo data set of owners, users, stores and ratings. Every step is
// idempotent so it can run on each deploy.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/store-rating/internal/apperr"
	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/logger"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/service"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "Demo#2024"

type Options struct {
	Admin service.CreateUserInput
	Demo  bool
}

// AdminFromConfig turns the ADMIN_* settings into an account request.
func AdminFromConfig(c config.BootstrapConfig) service.CreateUserInput {
	in := service.CreateUserInput{Name: c.Name, Email: c.Email, Password: c.Password}
	if c.Address != "" {
		addr := c.Address
		in.Address = &addr
	}
	return in
}

// Result counts what this run created.
type Result struct {
	Users   int
	Stores  int
	Ratings int
}

type account struct{ name, email, address string }

var (
	demoOwners = []account{
		{"Rahul Sharma", "rahul@demo.com", "Pune, IN"},
		{"Sneha Mehta", "sneha@demo.com", "Mumbai, IN"},
		{"Arjun Verma", "arjun@demo.com", "Delhi, IN"},
	}
	demoUsers = []account{
		{"Aisha Kapoor", "aisha@demo.com", "Mumbai, IN"},
		{"Rohan Gupta", "rohan@demo.com", "Delhi, IN"},
		{"Maya Joshi", "maya@demo.com", "Pune, IN"},
		{"Ishaan Patil", "ishaan@demo.com", "Nagpur, IN"},
		{"Neha Rao", "neha@demo.com", "Hyderabad, IN"},
	}
	demoStores = []account{
		{"Sunrise Grocery", "sunrise@demo.com", "12 MG Road, Pune"},
		{"TechTown Electronics", "techtown@demo.com", "4 Linking Road, Mumbai"},
		{"Cafe Amora", "amora@demo.com", "9 Hauz Khas, Delhi"},
		{"Book Nook", "booknook@demo.com", "21 FC Road, Pune"},
		{"Bean & Brew", "beanbrew@demo.com", "3 Bandra West, Mumbai"},
	}
)

// Run ensures the administrator from opts and, with opts.Demo, the demo
// data set. Ratings are deterministic so reruns are no-ops.
func Run(ctx context.Context, admin *service.AdminService, stores *service.StoreService, log *logger.Logger, opts Options) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}
	var res Result

	if opts.Admin.Email != "" {
		opts.Admin.Role = string(model.RoleAdmin)
		u, created, err := admin.EnsureUser(ctx, opts.Admin)
		if err != nil {
			return res, fmt.Errorf("admin %s: %w", opts.Admin.Email, err)
		}
		if created {
			res.Users++
			log.Info(log.WithField(ctx, "email", u.Email), "administrator created")
		}
	}
	if !opts.Demo {
		return res, nil
	}

	owners, n, err := ensureAccounts(ctx, admin, demoOwners, model.RoleOwner)
	res.Users += n
	if err != nil {
		return res, err
	}
	raters, n, err := ensureAccounts(ctx, admin, demoUsers, model.RoleUser)
	res.Users += n
	if err != nil {
		return res, err
	}

	for i, a := range demoStores {
		ownerID := owners[i%len(owners)].UserID
		st, created, err := ensureStore(ctx, stores, a, ownerID)
		if err != nil {
			return res, fmt.Errorf("store %s: %w", a.email, err)
		}
		if created {
			res.Stores++
		}
		for j, r := range raters {
			if (i+j)%3 == 2 {
				continue
			}
			_, err := stores.SubmitRating(ctx, r, st.ID, (i+j)%5+1)
			switch {
			case err == nil:
				res.Ratings++
			case apperr.CodeOf(err) == apperr.CodeConflict:
			default:
				return res, fmt.Errorf("rating store %d by user %d: %w", st.ID, r.UserID, err)
			}
		}
	}
	log.Info(ctx, fmt.Sprintf("demo data ready: %d users, %d stores, %d ratings created", res.Users, res.Stores, res.Ratings))
	return res, nil
}

func ensureAccounts(ctx context.Context, admin *service.AdminService, accounts []account, role model.Role) ([]model.Identity, int, error) {
	ids := make([]model.Identity, 0, len(accounts))
	created := 0
	for _, a := range accounts {
		addr := a.address
		u, ok, err := admin.EnsureUser(ctx, service.CreateUserInput{
			Name:     a.name,
			Email:    a.email,
			Password: DemoPassword,
			Address:  &addr,
			Role:     string(role),
		})
		if err != nil {
			return ids, created, fmt.Errorf("account %s: %w", a.email, err)
		}
		if ok {
			created++
		}
		ids = append(ids, model.Identity{UserID: u.ID, Role: u.Role})
	}
	return ids, created, nil
}

// ensureStore creates the store or finds the existing one by email.
func ensureStore(ctx context.Context, stores *service.StoreService, a account, ownerID uint64) (model.StoreView, bool, error) {
	st, err := stores.CreateStore(ctx, service.CreateStoreInput{
		Name:    a.name,
		Email:   a.email,
		Address: a.address,
		OwnerID: &ownerID,
	})
	if err == nil {
		return st, true, nil
	}
	if apperr.CodeOf(err) != apperr.CodeConflict {
		return model.StoreView{}, false, err
	}
	found, err := stores.ListStores(ctx, service.ListStoresInput{Name: a.name}, nil)
	if err != nil {
		return model.StoreView{}, false, err
	}
	for _, v := range found {
		if strings.EqualFold(v.Email, a.email) {
			return v, false, nil
		}
	}
	return model.StoreView{}, false, apperr.Conflict("store email " + a.email + " is taken by another store")
}
