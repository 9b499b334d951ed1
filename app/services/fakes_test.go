package services_test

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/repositories"
	"github.com/shashiranjanraj/planty/pkg/apperr"
)

// ─── users ───────────────────────────────────────────────────────────────────

type memUsers struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]models.User
	updates int
}

func newMemUsers() *memUsers { return &memUsers{byID: map[primitive.ObjectID]models.User{}} }

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.byID {
		if other.Email == u.Email {
			return apperr.Conflict(repositories.MsgEmailTaken)
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := repositories.ObjectID(id, repositories.MsgUserNotFound)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[oid]
	if !ok {
		return nil, apperr.NotFound(repositories.MsgUserNotFound)
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperr.NotFound(repositories.MsgUserNotFound)
}

func (m *memUsers) FindMany(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]models.User{}
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *memUsers) All(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return apperr.NotFound(repositories.MsgUserNotFound)
	}
	for id, other := range m.byID {
		if id != u.ID && other.Email == u.Email {
			return apperr.Conflict(repositories.MsgEmailTaken)
		}
	}
	m.byID[u.ID] = *u
	m.updates++
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	oid, err := repositories.ObjectID(id, repositories.MsgUserNotFound)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[oid]; !ok {
		return apperr.NotFound(repositories.MsgUserNotFound)
	}
	delete(m.byID, oid)
	return nil
}

func (m *memUsers) get(id primitive.ObjectID) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

// ─── plants ──────────────────────────────────────────────────────────────────

type memPlants struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]models.Plant
	lists int
	fail  error
}

func newMemPlants() *memPlants { return &memPlants{byID: map[primitive.ObjectID]models.Plant{}} }

func (m *memPlants) seed(name string, price float64) models.Plant {
	p := models.Plant{
		ID:        primitive.NewObjectID(),
		PlantName: name,
		Category:  models.CategoryIndoor,
		Status:    models.PlantAvailable,
		Price:     price,
	}
	m.mu.Lock()
	m.byID[p.ID] = p
	m.mu.Unlock()
	return p
}

func (m *memPlants) Create(_ context.Context, p *models.Plant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	p.ID = primitive.NewObjectID()
	m.byID[p.ID] = *p
	return nil
}

func (m *memPlants) FindByID(_ context.Context, id string) (*models.Plant, error) {
	oid, err := repositories.ObjectID(id, repositories.MsgPlantNotFound)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[oid]
	if !ok {
		return nil, apperr.NotFound(repositories.MsgPlantNotFound)
	}
	return &p, nil
}

func (m *memPlants) FindMany(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]models.Plant{}
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memPlants) List(_ context.Context, f models.PlantFilter) ([]models.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	out := []models.Plant{}
	for _, p := range m.byID {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memPlants) Update(_ context.Context, id string, patch models.PlantPatch) (*models.Plant, error) {
	oid, err := repositories.ObjectID(id, repositories.MsgPlantNotFound)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[oid]
	if !ok {
		return nil, apperr.NotFound(repositories.MsgPlantNotFound)
	}
	if patch.PlantName != nil {
		p.PlantName = *patch.PlantName
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	m.byID[oid] = p
	return &p, nil
}

func (m *memPlants) Delete(_ context.Context, id string) error {
	oid, err := repositories.ObjectID(id, repositories.MsgPlantNotFound)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[oid]; !ok {
		return apperr.NotFound(repositories.MsgPlantNotFound)
	}
	delete(m.byID, oid)
	return nil
}

func (m *memPlants) setPrice(id primitive.ObjectID, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.byID[id]
	p.Price = price
	m.byID[id] = p
}

// ─── carts ───────────────────────────────────────────────────────────────────

type memCarts struct {
	mu   sync.Mutex
	rows []models.CartEntry
}

func (m *memCarts) Insert(_ context.Context, e *models.CartEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = primitive.NewObjectID()
	m.rows = append(m.rows, *e)
	return nil
}

func (m *memCarts) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.CartEntry{}
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memCarts) FindFirst(_ context.Context, userID, plantID primitive.ObjectID) (*models.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.PlantID == plantID {
			r := r
			return &r, nil
		}
	}
	return nil, apperr.NotFound(repositories.MsgCartNotFound)
}

func (m *memCarts) Update(_ context.Context, e *models.CartEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == e.ID {
			m.rows[i] = *e
			return nil
		}
	}
	return apperr.NotFound(repositories.MsgCartNotFound)
}

func (m *memCarts) DeleteFirst(_ context.Context, userID, plantID primitive.ObjectID) (*models.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.UserID == userID && r.PlantID == plantID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return &r, nil
		}
	}
	return nil, apperr.NotFound(repositories.MsgCartNotFound)
}

// ─── favorites ───────────────────────────────────────────────────────────────

type memFavorites struct {
	mu   sync.Mutex
	rows []models.Favorite
}

func (m *memFavorites) Insert(_ context.Context, f *models.Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = primitive.NewObjectID()
	m.rows = append(m.rows, *f)
	return nil
}

func (m *memFavorites) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Favorite{}
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memFavorites) DeleteFirst(_ context.Context, userID, plantID primitive.ObjectID) (*models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.UserID == userID && r.PlantID == plantID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return &r, nil
		}
	}
	return nil, apperr.NotFound(repositories.MsgFavoriteNotFound)
}

// ─── orders ──────────────────────────────────────────────────────────────────

type memOrders struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Order
}

func newMemOrders() *memOrders { return &memOrders{byID: map[primitive.ObjectID]models.Order{}} }

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	m.byID[o.ID] = *o
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id string) (*models.Order, error) {
	oid, err := repositories.ObjectID(id, repositories.MsgOrderNotFound)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[oid]
	if !ok {
		return nil, apperr.NotFound(repositories.MsgOrderNotFound)
	}
	return &o, nil
}

func (m *memOrders) All(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.byID {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrders) Update(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[o.ID]; !ok {
		return apperr.NotFound(repositories.MsgOrderNotFound)
	}
	m.byID[o.ID] = *o
	return nil
}

func (m *memOrders) Delete(_ context.Context, id string) error {
	oid, err := repositories.ObjectID(id, repositories.MsgOrderNotFound)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[oid]; !ok {
		return apperr.NotFound(repositories.MsgOrderNotFound)
	}
	delete(m.byID, oid)
	return nil
}

// ─── collaborators ───────────────────────────────────────────────────────────

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type firedEvent struct {
	name    string
	payload interface{}
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []firedEvent
}

func (r *recordingDispatcher) Fire(name string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, firedEvent{name, payload})
}

func (r *recordingDispatcher) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.name)
	}
	return out
}

var (
	_ repositories.Users     = (*memUsers)(nil)
	_ repositories.Plants    = (*memPlants)(nil)
	_ repositories.Carts     = (*memCarts)(nil)
	_ repositories.Favorites = (*memFavorites)(nil)
	_ repositories.Orders    = (*memOrders)(nil)
)
