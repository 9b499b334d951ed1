package controllers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/planty/app/controllers"
	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/app/services"
	"github.com/shashiranjanraj/planty/pkg/apperr"
	"github.com/shashiranjanraj/planty/pkg/auth"
	"github.com/shashiranjanraj/planty/pkg/ctx"
	"github.com/shashiranjanraj/planty/pkg/router"
)

// ─── stubs ───────────────────────────────────────────────────────────────────

type stubUsers struct {
	registered services.RegisterInput
	loginErr   error
	lookedUp   string
}

func (s *stubUsers) Register(_ context.Context, in services.RegisterInput) (*resources.AuthView, error) {
	s.registered = in
	return &resources.AuthView{User: resources.UserView{Name: in.Name, Email: in.Email}, Token: "tok"}, nil
}
func (s *stubUsers) Login(context.Context, services.LoginInput) (*resources.AuthView, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &resources.AuthView{Token: "tok"}, nil
}
func (s *stubUsers) RequestPasswordResetOTP(context.Context, services.OTPInput) error { return nil }
func (s *stubUsers) ResetPassword(context.Context, services.ResetPasswordInput) (resources.UserView, error) {
	return resources.UserView{}, nil
}
func (s *stubUsers) UpdateUser(context.Context, string, services.UserPatch) (resources.UserView, error) {
	return resources.UserView{}, nil
}
func (s *stubUsers) DeleteUser(context.Context, string) error { return nil }
func (s *stubUsers) ListUsers(context.Context) ([]resources.UserView, error) {
	return []resources.UserView{}, nil
}
func (s *stubUsers) GetUserByEmail(_ context.Context, email string) (resources.UserView, error) {
	s.lookedUp = email
	return resources.UserView{Email: email}, nil
}

type stubPlants struct {
	filter   models.PlantFilter
	uploaded string
	body     []byte
}

func (s *stubPlants) Create(_ context.Context, in services.PlantInput) (*models.Plant, error) {
	return &models.Plant{PlantName: in.PlantName}, nil
}
func (s *stubPlants) List(_ context.Context, f models.PlantFilter) ([]models.Plant, error) {
	s.filter = f
	return []models.Plant{}, nil
}
func (s *stubPlants) Get(context.Context, string) (*models.Plant, error) {
	return nil, apperr.NotFound("Plant not found")
}
func (s *stubPlants) Update(context.Context, string, services.PlantPatchInput) (*models.Plant, error) {
	return &models.Plant{}, nil
}
func (s *stubPlants) Delete(context.Context, string) error { return nil }
func (s *stubPlants) UploadImage(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	s.uploaded = filename
	s.body, _ = io.ReadAll(r)
	return "https://cdn.example.com/plants/" + filename, nil
}
func (s *stubPlants) Export(_ context.Context, w io.Writer) error {
	_, err := w.Write([]byte("PK-fake-workbook"))
	return err
}

type stubCarts struct {
	user, plant string
	patch       services.CartPatch
}

func (s *stubCarts) Add(_ context.Context, userID string, _ services.CartInput) (resources.CartEntryView, error) {
	s.user = userID
	return resources.CartEntryView{Quantity: 2}, nil
}
func (s *stubCarts) List(_ context.Context, userID string) ([]resources.CartEntryView, error) {
	s.user = userID
	return []resources.CartEntryView{}, nil
}
func (s *stubCarts) Remove(_ context.Context, userID, plantID string) error {
	s.user, s.plant = userID, plantID
	return apperr.NotFound("Cart item not found")
}
func (s *stubCarts) Update(_ context.Context, userID, plantID string, patch services.CartPatch) (resources.CartEntryView, error) {
	s.user, s.plant, s.patch = userID, plantID, patch
	return resources.CartEntryView{}, nil
}

type stubOrders struct{ deleted string }

func (s *stubOrders) Create(context.Context, string, services.OrderInput) (resources.OrderView, error) {
	return resources.OrderView{}, nil
}
func (s *stubOrders) List(context.Context) ([]resources.OrderView, error) {
	return []resources.OrderView{}, nil
}
func (s *stubOrders) Get(context.Context, string) (resources.OrderView, error) {
	return resources.OrderView{}, nil
}
func (s *stubOrders) Update(context.Context, string, services.OrderPatch) (resources.OrderView, error) {
	return resources.OrderView{}, nil
}
func (s *stubOrders) Delete(_ context.Context, id string) error {
	s.deleted = id
	return nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func do(r *router.Router, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, id string) *http.Request {
	return req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: id}))
}

// ─── users ───────────────────────────────────────────────────────────────────

func TestRegisterCreated(t *testing.T) {
	users := &stubUsers{}
	uc := controllers.NewUserController(users)
	r := router.New()
	r.Post("/user/register", "", ctx.Wrap(uc.Register))

	rec := do(r, jsonReq(http.MethodPost, "/user/register",
		`{"name":"Rosa","email":"rosa@example.com","password":"Secret1!","confirmPassword":"Secret1!"}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"User created successfully"`)
	assert.Contains(t, rec.Body.String(), `"token":"tok"`)
	assert.Equal(t, "rosa@example.com", users.registered.Email)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	users := &stubUsers{}
	uc := controllers.NewUserController(users)
	r := router.New()
	r.Post("/user/register", "", ctx.Wrap(uc.Register))

	rec := do(r, jsonReq(http.MethodPost, "/user/register",
		`{"name":"Rosa","email":"rosa@example.com","password":"weak","confirmPassword":"weak"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"password"`)
	assert.Empty(t, users.registered.Email)
}

func TestLoginWrongPasswordIs402(t *testing.T) {
	uc := controllers.NewUserController(&stubUsers{loginErr: apperr.Auth("Password is incorrect")})
	r := router.New()
	r.Post("/user/login", "", ctx.Wrap(uc.Login))

	rec := do(r, jsonReq(http.MethodPost, "/user/login", `{"email":"rosa@example.com","password":"nope"}`))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password is incorrect")
}

func TestShowUserByEmailParam(t *testing.T) {
	users := &stubUsers{}
	uc := controllers.NewUserController(users)
	r := router.New()
	r.Get("/user/email/{email}", "", ctx.Wrap(uc.Show))

	rec := do(r, httptest.NewRequest(http.MethodGet, "/user/email/rosa@example.com", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rosa@example.com", users.lookedUp)
}

// ─── plants ──────────────────────────────────────────────────────────────────

func TestPlantIndexPassesFilter(t *testing.T) {
	plants := &stubPlants{}
	pc := controllers.NewPlantController(plants)
	r := router.New()
	r.Get("/plants", "", ctx.Wrap(pc.Index))

	rec := do(r, httptest.NewRequest(http.MethodGet, "/plants?category=indoor&status=Not+Available", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PlantFilter{Category: "indoor", Status: "Not Available"}, plants.filter)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestPlantShowNotFound(t *testing.T) {
	pc := controllers.NewPlantController(&stubPlants{})
	r := router.New()
	r.Get("/plants/{id}", "", ctx.Wrap(pc.Show))

	rec := do(r, httptest.NewRequest(http.MethodGet, "/plants/65f1c0a2b3d4e5f601234567", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Plant not found")
}

func TestPlantStoreValidatesEnums(t *testing.T) {
	pc := controllers.NewPlantController(&stubPlants{})
	r := router.New()
	r.Post("/plants", "", ctx.Wrap(pc.Store))

	rec := do(r, jsonReq(http.MethodPost, "/plants",
		`{"plantname":"Fern","description":"d","type":"t","category":"cacti","status":"Available","price":5,"image":"x.png"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category"`)

	rec = do(r, jsonReq(http.MethodPost, "/plants",
		`{"plantname":"Fern","description":"d","type":"t","category":"indoor","status":"Not Available","price":5,"image":"x.png"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPlantUploadImage(t *testing.T) {
	plants := &stubPlants{}
	pc := controllers.NewPlantController(plants)
	r := router.New()
	r.Post("/plants/image", "", ctx.Wrap(pc.UploadImage))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "fern.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/plants/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(r, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url":"https://cdn.example.com/plants/fern.png"`)
	assert.Equal(t, "png-bytes", string(plants.body))
}

func TestPlantUploadRejectsExtension(t *testing.T) {
	plants := &stubPlants{}
	pc := controllers.NewPlantController(plants)
	r := router.New()
	r.Post("/plants/image", "", ctx.Wrap(pc.UploadImage))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("hello"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/plants/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(r, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, plants.uploaded)
}

func TestPlantExportHeaders(t *testing.T) {
	pc := controllers.NewPlantController(&stubPlants{})
	r := router.New()
	r.Get("/plants/export", "", ctx.Wrap(pc.Export))

	rec := do(r, httptest.NewRequest(http.MethodGet, "/plants/export", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Equal(t, "attachment; filename=plants.xlsx", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK-fake-workbook", rec.Body.String())
}

// ─── cart ────────────────────────────────────────────────────────────────────

func TestCartUsesTokenUser(t *testing.T) {
	carts := &stubCarts{}
	cc := controllers.NewCartController(carts)
	r := router.New()
	g := r.Group("/cart")
	g.Post("/", "", ctx.Wrap(cc.Store))
	g.Patch("/{plantId}", "", ctx.Wrap(cc.Update))

	rec := do(r, asUser(jsonReq(http.MethodPost, "/cart",
		`{"plantId":"65f1c0a2b3d4e5f601234567","quantity":2,"price":4.5}`), "u-1"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u-1", carts.user)

	rec = do(r, asUser(jsonReq(http.MethodPatch, "/cart/65f1c0a2b3d4e5f601234567", `{"quantity":3}`), "u-2"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-2", carts.user)
	assert.Equal(t, "65f1c0a2b3d4e5f601234567", carts.plant)
	require.NotNil(t, carts.patch.Quantity)
	assert.Equal(t, 3, *carts.patch.Quantity)
	assert.Nil(t, carts.patch.Price)
}

func TestCartRejectsZeroQuantity(t *testing.T) {
	carts := &stubCarts{}
	cc := controllers.NewCartController(carts)
	r := router.New()
	r.Post("/cart", "", ctx.Wrap(cc.Store))

	rec := do(r, asUser(jsonReq(http.MethodPost, "/cart",
		`{"plantId":"65f1c0a2b3d4e5f601234567","quantity":0,"price":4.5}`), "u-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, carts.user)
}

func TestCartRemoveMissing(t *testing.T) {
	cc := controllers.NewCartController(&stubCarts{})
	r := router.New()
	g := r.Group("/cart")
	g.Delete("/{plantId}", "", ctx.Wrap(cc.Destroy))

	rec := do(r, asUser(httptest.NewRequest(http.MethodDelete, "/cart/65f1c0a2b3d4e5f601234567", nil), "u-1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cart item not found")
}

// ─── orders ──────────────────────────────────────────────────────────────────

func TestOrderDestroyIs204(t *testing.T) {
	orders := &stubOrders{}
	oc := controllers.NewOrderController(orders)
	r := router.New()
	g := r.Group("/orders")
	g.Delete("/{id}", "", ctx.Wrap(oc.Destroy))

	rec := do(r, httptest.NewRequest(http.MethodDelete, "/orders/65f1c0a2b3d4e5f601234567", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "65f1c0a2b3d4e5f601234567", orders.deleted)
}

func TestOrderStoreRejectsUnknownStatus(t *testing.T) {
	oc := controllers.NewOrderController(&stubOrders{})
	r := router.New()
	r.Post("/orders", "", ctx.Wrap(oc.Store))

	rec := do(r, asUser(jsonReq(http.MethodPost, "/orders",
		`{"products":"65f1c0a2b3d4e5f601234567","quantity":1,"status":"shipped"}`), "u-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)
}
