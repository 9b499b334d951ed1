package controllers

import (
	"context"

	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/app/services"
	"github.com/shashiranjanraj/planty/pkg/ctx"
)

// UserService is what UserController needs from services.UserService.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*resources.AuthView, error)
	Login(ctx context.Context, in services.LoginInput) (*resources.AuthView, error)
	RequestPasswordResetOTP(ctx context.Context, in services.OTPInput) error
	ResetPassword(ctx context.Context, in services.ResetPasswordInput) (resources.UserView, error)
	UpdateUser(ctx context.Context, id string, patch services.UserPatch) (resources.UserView, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]resources.UserView, error)
	GetUserByEmail(ctx context.Context, email string) (resources.UserView, error)
}

type UserController struct {
	users UserService
}

func NewUserController(users UserService) *UserController {
	return &UserController{users: users}
}

// Register handles POST /user/register.
func (uc *UserController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	out, err := uc.users.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.CreatedMessage("User created successfully", out)
}

// Login handles POST /user/login.
func (uc *UserController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	out, err := uc.users.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Login successful", out)
}

// SendOTP handles POST /user/otp. The code itself is only ever emailed.
func (uc *UserController) SendOTP(c *ctx.Context) {
	var in services.OTPInput
	if !c.BindJSON(&in) {
		return
	}
	if err := uc.users.RequestPasswordResetOTP(c.Context(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Otp sent successfully", nil)
}

// ResetPassword handles POST /user/reset-password.
func (uc *UserController) ResetPassword(c *ctx.Context) {
	var in services.ResetPasswordInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := uc.users.ResetPassword(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Password reset successfully", user)
}

func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.users.ListUsers(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Users fetched successfully", users)
}

func (uc *UserController) Show(c *ctx.Context) {
	user, err := uc.users.GetUserByEmail(c.Context(), c.Param("email"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("User found", user)
}

func (uc *UserController) Update(c *ctx.Context) {
	var patch services.UserPatch
	if !c.BindJSON(&patch) {
		return
	}
	user, err := uc.users.UpdateUser(c.Context(), c.Param("id"), patch)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("User updated", user)
}

func (uc *UserController) Destroy(c *ctx.Context) {
	if err := uc.users.DeleteUser(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message("User deleted", nil)
}
