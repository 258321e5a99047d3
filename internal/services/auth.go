package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/store"
	"github.com/example/bazaar/internal/utils"
)

// OTPSender delivers a one-time code to a phone number.
type OTPSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// AuthConfig controls code issuance and session tokens.
type AuthConfig struct {
	JWTSecret   string
	TokenTTL    time.Duration
	CodeLength  int
	CodeTTL     time.Duration
	MaxAttempts int
	ExposeCode  bool
}

// AuthConfigFrom picks the auth settings out of the application config.
func AuthConfigFrom(cfg *config.Config) AuthConfig {
	return AuthConfig{
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenExpires,
		CodeLength:  cfg.OTP.Length,
		CodeTTL:     cfg.OTP.TTL,
		MaxAttempts: cfg.OTP.MaxAttempts,
		ExposeCode:  cfg.OTP.ExposeCode,
	}
}

// AuthService runs phone + one-time code authentication.
type AuthService struct {
	users      *store.UserStore
	challenges *store.ChallengeStore
	sender     OTPSender
	cfg        AuthConfig

	now     func() time.Time
	newCode func(digits int) (string, error)
}

func NewAuthService(users *store.UserStore, challenges *store.ChallengeStore, sender OTPSender, cfg AuthConfig) *AuthService {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 4
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		challenges: challenges,
		sender:     sender,
		cfg:        cfg,
		now:        time.Now,
		newCode:    utils.GenerateNumericCode,
	}
}

// RegisterInput is the profile captured at sign-up.
type RegisterInput struct {
	Phone     string
	FirstName string
	LastName  string
	Address1  string
	Address2  string
	Pincode   string
	City      string
	State     string
}

// OTPReceipt acknowledges an issued code. Code is empty unless code
// exposure is enabled.
type OTPReceipt struct {
	Phone     string    `json:"phoneNo"`
	ExpiresAt time.Time `json:"expiresAt"`
	Code      string    `json:"otp,omitempty"`
}

// Session is the result of a successful code validation.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// NormalizePhone strips formatting and checks the number has 10 to 15 digits.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+':
		default:
			return "", invalidInput("phone number contains %q", r)
		}
	}
	phone := b.String()
	if len(phone) < 10 || len(phone) > 15 {
		return "", invalidInput("phone number must have 10 to 15 digits")
	}
	return phone, nil
}

// Register creates a customer for an unused phone number and issues a code.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*OTPReceipt, error) {
	phone, err := NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByPhone(ctx, phone); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Phone:     phone,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Address1:  input.Address1,
		Address2:  input.Address2,
		Pincode:   input.Pincode,
		City:      input.City,
		State:     input.State,
		Role:      models.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return s.issue(ctx, user)
}

// Login issues a fresh code to an existing user. Unknown phones get
// ErrInvalidCredential and nothing is written.
func (s *AuthService) Login(ctx context.Context, phone string) (*OTPReceipt, error) {
	user, err := s.lookup(ctx, phone)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// LoginAdmin is Login restricted to admin accounts.
func (s *AuthService) LoginAdmin(ctx context.Context, phone string) (*OTPReceipt, error) {
	user, err := s.lookup(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsAdmin() {
		return nil, ErrInvalidCredential
	}
	return s.issue(ctx, user)
}

// ValidateOTP redeems the user's pending code and returns a session token.
func (s *AuthService) ValidateOTP(ctx context.Context, phone, code string) (*Session, error) {
	return s.validate(ctx, phone, code, false)
}

// ValidateAdminOTP is ValidateOTP restricted to admin accounts.
func (s *AuthService) ValidateAdminOTP(ctx context.Context, phone, code string) (*Session, error) {
	return s.validate(ctx, phone, code, true)
}

func (s *AuthService) validate(ctx context.Context, phone, code string, adminOnly bool) (*Session, error) {
	user, err := s.lookup(ctx, phone)
	if err != nil {
		return nil, err
	}
	if adminOnly && !user.Role.IsAdmin() {
		return nil, ErrInvalidCredential
	}

	challenge, err := s.challenges.Pending(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	now := s.now()
	if !challenge.Live(now, s.cfg.MaxAttempts) {
		return nil, ErrInvalidCredential
	}

	// Count the guess before comparing: a challenge sees at most MaxAttempts comparisons.
	attempts, err := s.challenges.ClaimAttempt(ctx, challenge.ID, s.cfg.MaxAttempts)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if !utils.CheckCode(challenge.CodeHash, strings.TrimSpace(code)) {
		if s.cfg.MaxAttempts > 0 && attempts >= s.cfg.MaxAttempts {
			log.Printf("[OTP] challenge for user %s locked after %d attempts", user.ID, attempts)
		}
		return nil, ErrInvalidCredential
	}

	if err := s.challenges.Consume(ctx, challenge.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	token, expiresAt, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) lookup(ctx context.Context, phone string) (*models.User, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	user, err := s.users.GetByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*OTPReceipt, error) {
	code, err := s.newCode(s.cfg.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	hash, err := utils.HashCode(code)
	if err != nil {
		return nil, fmt.Errorf("hash code: %w", err)
	}

	challenge := &models.OTPChallenge{
		UserID:    user.ID,
		CodeHash:  hash,
		ExpiresAt: s.now().Add(s.cfg.CodeTTL),
	}
	if err := s.challenges.Issue(ctx, challenge); err != nil {
		return nil, err
	}

	if err := s.sender.SendOTP(ctx, user.Phone, code); err != nil {
		log.Printf("[OTP] delivery to %s failed: %v", maskPhone(user.Phone), err)
	}

	receipt := &OTPReceipt{Phone: user.Phone, ExpiresAt: challenge.ExpiresAt}
	if s.cfg.ExposeCode {
		receipt.Code = code
	}
	return receipt, nil
}

// RegisterAdmin creates an admin account, or promotes an existing user.
func (s *AuthService) RegisterAdmin(ctx context.Context, input RegisterInput) (*models.User, error) {
	phone, err := NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		if existing.Role.IsAdmin() {
			return existing, nil
		}
		return s.users.Update(ctx, existing.ID, map[string]interface{}{"role": models.RoleAdmin})
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	user := &models.User{
		Phone:     phone,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      models.RoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	log.Printf("[Auth] admin %s created", maskPhone(phone))
	return user, nil
}

// ProfileInput carries optional profile changes. Nil fields are left alone.
type ProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Address1  *string `json:"address1"`
	Address2  *string `json:"address2"`
	Pincode   *string `json:"pincode"`
	City      *string `json:"city"`
	State     *string `json:"state"`
}

// UpdateProfile edits a user's profile. Customers may only edit themselves.
func (s *AuthService) UpdateProfile(ctx context.Context, actor utils.Claims, id uuid.UUID, input ProfileInput) (*models.User, error) {
	if actor.UserID != id && !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}

	fields := map[string]interface{}{}
	set := func(column string, value *string) {
		if value != nil {
			fields[column] = strings.TrimSpace(*value)
		}
	}
	set("first_name", input.FirstName)
	set("last_name", input.LastName)
	set("address1", input.Address1)
	set("address2", input.Address2)
	set("pincode", input.Pincode)
	set("city", input.City)
	set("state", input.State)

	user, err := s.users.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, page utils.Pagination) ([]models.User, int64, error) {
	return s.users.List(ctx, page.Offset, page.Limit)
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
