// Package servicetest provides an in-memory backing store for the service
// layer. It enforces the same uniqueness rules as the MySQL schema and
// reports the same repository sentinels.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
)

// Memory is one shared data set. Users, Stores, Ratings and Stats return
// views over it that satisfy the service interfaces.
type Memory struct {
	mu      sync.Mutex
	users   []model.User
	stores  []model.Store
	ratings []model.Rating
	clock   time.Time
	queries int
}

func New() *Memory {
	return &Memory{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *Memory) Users() *Users     { return &Users{m} }
func (m *Memory) Stores() *Stores   { return &Stores{m} }
func (m *Memory) Ratings() *Ratings { return &Ratings{m} }
func (m *Memory) Stats() *Stats     { return &Stats{m} }

// tick advances the fake clock so created_at ordering is deterministic.
func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type Users struct{ m *Memory }

func (u *Users) Create(_ context.Context, usr *model.User) error {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	usr.Email = strings.ToLower(strings.TrimSpace(usr.Email))
	for _, x := range m.users {
		if x.Email == usr.Email {
			return repository.ErrDuplicate
		}
	}
	usr.CreatedAt = m.tick()
	usr.ID = uint64(len(m.users) + 1)
	m.users = append(m.users, *usr)
	return nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	email = strings.ToLower(strings.TrimSpace(email))
	for _, x := range m.users {
		if x.Email == email {
			return x, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (u *Users) GetByID(_ context.Context, id uint64) (model.User, error) {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	if i := m.userIndex(id); i >= 0 {
		return m.users[i], nil
	}
	return model.User{}, repository.ErrNotFound
}

func (u *Users) UpdatePassword(_ context.Context, id uint64, hash string) error {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	i := m.userIndex(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.users[i].PasswordHash = hash
	return nil
}

func (u *Users) UpdateRole(_ context.Context, id uint64, role model.Role) error {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	i := m.userIndex(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.users[i].Role = role
	return nil
}

func (u *Users) List(_ context.Context, q repository.UserQuery) ([]model.User, error) {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	out := []model.User{}
	for _, x := range m.users {
		if q.Role != nil && x.Role != *q.Role {
			continue
		}
		addr := ""
		if x.Address != nil {
			addr = *x.Address
		}
		if !contains(x.Name, q.Name) || !contains(x.Email, q.Email) || !contains(addr, q.Address) {
			continue
		}
		out = append(out, x)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var c int
		switch q.Sort.Field {
		case "name":
			c = strings.Compare(a.Name, b.Name)
		case "email":
			c = strings.Compare(a.Email, b.Email)
		case "role":
			c = strings.Compare(string(a.Role), string(b.Role))
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			return a.ID < b.ID
		}
		return (c < 0) != q.Sort.Desc
	})
	if q.Sort.Field == "id" && q.Sort.Desc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (m *Memory) userIndex(id uint64) int {
	for i, x := range m.users {
		if x.ID == id {
			return i
		}
	}
	return -1
}

type Stores struct{ m *Memory }

func (s *Stores) Create(_ context.Context, st *model.Store) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	for _, x := range m.stores {
		if strings.EqualFold(x.Email, st.Email) {
			return repository.ErrDuplicate
		}
	}
	st.CreatedAt = m.tick()
	st.ID = uint64(len(m.stores) + 1)
	m.stores = append(m.stores, *st)
	return nil
}

func (s *Stores) GetByID(_ context.Context, id uint64) (model.Store, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	for _, x := range m.stores {
		if x.ID == id {
			return x, nil
		}
	}
	return model.Store{}, repository.ErrNotFound
}

func (s *Stores) GetView(_ context.Context, id uint64) (model.StoreView, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	for _, x := range m.stores {
		if x.ID == id {
			return m.view(x, nil), nil
		}
	}
	return model.StoreView{}, repository.ErrNotFound
}

func (s *Stores) List(_ context.Context, q repository.StoreQuery) ([]model.StoreView, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	out := []model.StoreView{}
	for _, x := range m.stores {
		if !contains(x.Name, q.Name) || !contains(x.Address, q.Address) {
			continue
		}
		out = append(out, m.view(x, q.ViewerID))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var c int
		switch q.Sort.Field {
		case "name":
			c = strings.Compare(a.Name, b.Name)
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		case "averageRating":
			c = cmpFloat(a.AverageRating, b.AverageRating)
		case "ratingCount":
			c = cmpFloat(float64(a.RatingCount), float64(b.RatingCount))
		}
		if c == 0 {
			return a.ID < b.ID
		}
		return (c < 0) != q.Sort.Desc
	})
	return out, nil
}

func (s *Stores) ListByOwner(_ context.Context, ownerID uint64) ([]model.StoreView, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	out := []model.StoreView{}
	for _, x := range m.stores {
		if x.OwnerID != nil && *x.OwnerID == ownerID {
			out = append(out, m.view(x, nil))
		}
	}
	return out, nil
}

func (s *Stores) Raters(_ context.Context, storeID uint64) ([]model.Rater, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	out := []model.Rater{}
	for _, r := range m.ratings {
		if r.StoreID != storeID {
			continue
		}
		u := m.users[m.userIndex(r.UserID)]
		out = append(out, model.Rater{ID: u.ID, Name: u.Name, Email: u.Email, RatingValue: r.Value})
	}
	return out, nil
}

func (m *Memory) view(st model.Store, viewer *uint64) model.StoreView {
	v := model.StoreView{
		ID:        st.ID,
		Name:      st.Name,
		Email:     st.Email,
		Address:   st.Address,
		OwnerID:   st.OwnerID,
		CreatedAt: st.CreatedAt,
	}
	var sum int
	for _, r := range m.ratings {
		if r.StoreID != st.ID {
			continue
		}
		sum += r.Value
		v.RatingCount++
		if viewer != nil && r.UserID == *viewer {
			val := r.Value
			v.UserRating = &val
		}
	}
	if v.RatingCount > 0 {
		v.AverageRating = float64(sum) / float64(v.RatingCount)
	}
	return v
}

type Ratings struct{ m *Memory }

func (r *Ratings) Create(_ context.Context, rt *model.Rating) error {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	for _, x := range m.ratings {
		if x.UserID == rt.UserID && x.StoreID == rt.StoreID {
			return repository.ErrDuplicate
		}
	}
	now := m.tick()
	rt.ID = uint64(len(m.ratings) + 1)
	rt.CreatedAt, rt.UpdatedAt = now, now
	m.ratings = append(m.ratings, *rt)
	return nil
}

func (r *Ratings) Update(_ context.Context, userID, storeID uint64, value int) (model.Rating, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	for i, x := range m.ratings {
		if x.UserID == userID && x.StoreID == storeID {
			m.ratings[i].Value = value
			m.ratings[i].UpdatedAt = m.tick()
			return m.ratings[i], nil
		}
	}
	return model.Rating{}, repository.ErrNotFound
}

type Stats struct{ m *Memory }

func (s *Stats) Counts(context.Context) (model.Stats, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	return model.Stats{
		UserCount:   int64(len(m.users)),
		StoreCount:  int64(len(m.stores)),
		RatingCount: int64(len(m.ratings)),
	}, nil
}

// QueryCount reports how many reads and writes reached the data set.
func (m *Memory) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries
}

// Events records published rating events.
type Events struct {
	mu  sync.Mutex
	Got []queue.RatingEvent
	Err error
}

func (e *Events) PublishRating(_ context.Context, ev queue.RatingEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Got = append(e.Got, ev)
	return e.Err
}

func (e *Events) All() []queue.RatingEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]queue.RatingEvent(nil), e.Got...)
}

// Invalidations counts cache invalidation calls.
type Invalidations struct {
	mu sync.Mutex
	n  int
}

func (i *Invalidations) Invalidate(context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.n++
	return nil
}

func (i *Invalidations) Count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.n
}

func contains(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
