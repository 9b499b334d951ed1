package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/repositories"
	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/config"
	"github.com/shashiranjanraj/planty/pkg/apperr"
	"github.com/shashiranjanraj/planty/pkg/auth"
	"github.com/shashiranjanraj/planty/pkg/logger"
	"github.com/shashiranjanraj/planty/pkg/mail"
	"github.com/shashiranjanraj/planty/pkg/metrics"
	"github.com/shashiranjanraj/planty/pkg/ratelimit"
)

const (
	otpSubject  = "Otp for Email Verification"
	otpBodyText = "Your Otp is : %s"
)

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Name            string `json:"name"            validate:"required,max=100"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,same=password"`
}

// LoginInput is the payload for signing in.
type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// OTPInput asks for a reset code.
type OTPInput struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordInput redeems a reset code.
type ResetPasswordInput struct {
	Email           string `json:"email"           validate:"required"`
	OTP             string `json:"otp"             validate:"required"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,same=password"`
}

// UserPatch is a partial account update.
type UserPatch struct {
	Name     *string `json:"name"     validate:"nullable,required,max=100"`
	Email    *string `json:"email"    validate:"nullable,required,email"`
	Password *string `json:"password" validate:"nullable,required,password"`
}

// UserConfig holds token lifetimes and OTP policy.
type UserConfig struct {
	RegisterTTL    time.Duration
	LoginTTL       time.Duration
	OTPTTL         time.Duration
	OTPMaxAttempts int
}

// UserConfigFromEnv reads the policy from config.
func UserConfigFromEnv() UserConfig {
	return UserConfig{
		RegisterTTL:    config.RegisterTokenTTL(),
		LoginTTL:       config.LoginTokenTTL(),
		OTPTTL:         config.OTPTTL(),
		OTPMaxAttempts: config.OTPMaxAttempts(),
	}
}

// UserService handles accounts, sign-in and password reset.
type UserService struct {
	users   repositories.Users
	issuer  *auth.Issuer
	hasher  auth.Hasher
	mailer  mail.Mailer
	limiter ratelimit.Limiter
	cfg     UserConfig
	now     func() time.Time
	otp     func() (string, error)
}

// UserOption customises a UserService.
type UserOption func(*UserService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) UserOption { return func(s *UserService) { s.now = now } }

// WithOTPGenerator replaces the random reset-code generator.
func WithOTPGenerator(gen func() (string, error)) UserOption {
	return func(s *UserService) { s.otp = gen }
}

func NewUserService(
	users repositories.Users,
	issuer *auth.Issuer,
	hasher auth.Hasher,
	mailer mail.Mailer,
	limiter ratelimit.Limiter,
	cfg UserConfig,
	opts ...UserOption,
) *UserService {
	s := &UserService{
		users:   users,
		issuer:  issuer,
		hasher:  hasher,
		mailer:  mailer,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
		otp:     GenerateOTP,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates an account and signs the user in with a short-lived token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*resources.AuthView, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("could not hash password", err)
	}

	u := &models.User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.authView(u, s.cfg.RegisterTTL)
}

// Login checks the credentials and issues a day-long token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*resources.AuthView, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Check(u.PasswordHash, in.Password) {
		return nil, apperr.Auth("Password is incorrect")
	}
	return s.authView(u, s.cfg.LoginTTL)
}

func (s *UserService) authView(u *models.User, ttl time.Duration) (*resources.AuthView, error) {
	token, err := s.issuer.Issue(auth.Identity{UserID: u.ID.Hex(), Name: u.Name, Email: u.Email}, ttl)
	if err != nil {
		return nil, apperr.Internal("could not issue token", err)
	}
	return &resources.AuthView{User: resources.User(*u), Token: token}, nil
}

// RequestPasswordResetOTP stores a fresh reset code on the account and
// mails it. The code is persisted before sending, so a relay failure leaves
// it in place and the user can simply ask again.
func (s *UserService) RequestPasswordResetOTP(ctx context.Context, in OTPInput) error {
	if err := check(in); err != nil {
		return err
	}
	if err := s.throttle(ctx, "otp:request:"+in.Email); err != nil {
		metrics.OTPRequests.WithLabelValues("throttled").Inc()
		return err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			metrics.OTPRequests.WithLabelValues("unknown_email").Inc()
		}
		return err
	}

	code, err := s.otp()
	if err != nil {
		return apperr.Internal("could not generate otp", err)
	}
	expires := s.now().Add(s.cfg.OTPTTL)
	u.OTP, u.OTPExpires = code, &expires
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, u.Email, otpSubject, fmt.Sprintf(otpBodyText, code)); err != nil {
		metrics.OTPRequests.WithLabelValues("mail_failed").Inc()
		return apperr.Internal("Error sending otp", err)
	}
	metrics.OTPRequests.WithLabelValues("sent").Inc()
	return nil
}

// ResetPassword redeems a reset code. Checks run in a fixed order: payload,
// account, code, expiry.
func (s *UserService) ResetPassword(ctx context.Context, in ResetPasswordInput) (resources.UserView, error) {
	if err := check(in); err != nil {
		return resources.UserView{}, err
	}
	if err := s.throttle(ctx, "otp:verify:"+in.Email); err != nil {
		return resources.UserView{}, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return resources.UserView{}, err
	}
	if !u.HasPendingOTP() || subtle.ConstantTimeCompare([]byte(u.OTP), []byte(in.OTP)) != 1 {
		return resources.UserView{}, apperr.Auth("Invalid otp")
	}
	if s.now().After(*u.OTPExpires) {
		return resources.UserView{}, apperr.Expired("Otp expired")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return resources.UserView{}, apperr.Internal("could not hash password", err)
	}
	u.PasswordHash = hash
	u.OTP, u.OTPExpires = "", nil
	if err := s.users.Update(ctx, u); err != nil {
		return resources.UserView{}, err
	}
	return resources.User(*u), nil
}

// throttle applies the per-email OTP attempt limit. A broken limiter store
// lets the request through.
func (s *UserService) throttle(ctx context.Context, key string) error {
	if s.limiter == nil || s.cfg.OTPMaxAttempts <= 0 {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, key, s.cfg.OTPMaxAttempts, s.cfg.OTPTTL)
	if err != nil {
		logger.WithCtx(ctx).Warn("otp limiter unavailable", "error", err)
		return nil
	}
	if !ok {
		return apperr.RateLimited("Too many attempts, try again later")
	}
	return nil
}

// UpdateUser applies a partial update. A new password is re-hashed and a
// taken email is reported by the unique index.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch UserPatch) (resources.UserView, error) {
	if err := check(patch); err != nil {
		return resources.UserView{}, err
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return resources.UserView{}, err
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return resources.UserView{}, apperr.Internal("could not hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		return resources.UserView{}, err
	}
	return resources.User(*u), nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]resources.UserView, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}
	return resources.Users(users), nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (resources.UserView, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return resources.UserView{}, err
	}
	return resources.User(*u), nil
}

// GenerateOTP returns four digits in 1000–9999 followed by two uppercase
// letters, e.g. "4821QK".
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	code := []byte(fmt.Sprintf("%d", 1000+n.Int64()))
	for i := 0; i < 2; i++ {
		l, err := rand.Int(rand.Reader, big.NewInt(26))
		if err != nil {
			return "", err
		}
		code = append(code, byte('A'+l.Int64()))
	}
	return string(code), nil
}
