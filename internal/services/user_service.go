package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"centavo/internal/auth"
	"centavo/internal/core"
	"centavo/internal/log"
)

const minPasswordLength = 8

// UserService owns registration, login, profiles and Telegram identities.
type UserService struct {
	users           UserStore
	tokens          *auth.Tokens
	linker          *Linker
	defaultCurrency string
	logger          *log.Logger
}

func NewUserService(users UserStore, tokens *auth.Tokens, linker *Linker, defaultCurrency string, logger *log.Logger) *UserService {
	if defaultCurrency == "" {
		defaultCurrency = core.DefaultCurrency
	}
	return &UserService{
		users:           users,
		tokens:          tokens,
		linker:          linker,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Currency    string
}

// Register creates an email account. An email already in use is
// core.ErrConflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	v := &core.ValidationError{}
	if !strings.Contains(email, "@") || utf8.RuneCountInString(email) > 255 {
		v.Add("email", "must be a valid email address")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		v.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	u := core.User{
		Email:           &email,
		DisplayName:     strings.TrimSpace(in.DisplayName),
		DefaultCurrency: currency,
		IsActive:        true,
	}
	if err := u.Validate(); err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			for k, msg := range ve.Fields {
				v.Add(k, msg)
			}
		}
	}
	if err := v.OrNil(); err != nil {
		return core.User{}, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return core.User{}, fmt.Errorf("%w: email already registered", core.ErrConflict)
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, err
	}
	u.PasswordHash = hash

	created, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, err
	}
	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, created.ID)
	return created, nil
}

// Login checks credentials and issues a token pair. Every failure is
// core.ErrUnauthorized so callers cannot probe for accounts.
func (s *UserService) Login(ctx context.Context, email, password string) (auth.Pair, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return auth.Pair{}, fmt.Errorf("%w: invalid email or password", core.ErrUnauthorized)
	}
	if err != nil {
		return auth.Pair{}, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return auth.Pair{}, fmt.Errorf("%w: invalid email or password", core.ErrUnauthorized)
	}
	if !u.IsActive {
		return auth.Pair{}, fmt.Errorf("%w: account disabled", core.ErrUnauthorized)
	}
	return s.tokens.Issue(u.ID)
}

// Refresh exchanges a refresh token for a new pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.Pair, error) {
	userID, err := s.tokens.Parse(refreshToken, auth.Refresh)
	if err != nil {
		return auth.Pair{}, err
	}
	if _, err := s.activeUser(ctx, userID); err != nil {
		return auth.Pair{}, err
	}
	return s.tokens.Issue(userID)
}

// Authenticate resolves an access token to an active user.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (core.User, error) {
	userID, err := s.tokens.Parse(accessToken, auth.Access)
	if err != nil {
		return core.User{}, err
	}
	return s.activeUser(ctx, userID)
}

func (s *UserService) activeUser(ctx context.Context, userID string) (core.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("%w: user no longer exists", core.ErrUnauthorized)
	}
	if err != nil {
		return core.User{}, err
	}
	if !u.IsActive {
		return core.User{}, fmt.Errorf("%w: account disabled", core.ErrUnauthorized)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (core.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

type UpdateProfileInput struct {
	DisplayName     *string
	DefaultCurrency *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (core.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if in.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.DefaultCurrency != nil {
		u.DefaultCurrency = strings.ToUpper(strings.TrimSpace(*in.DefaultCurrency))
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	return s.users.UpdateUser(ctx, u)
}

// GetOrCreateTelegramUser returns the user bound to telegramID, creating a
// shadow user on first contact. created reports whether a user was made.
func (s *UserService) GetOrCreateTelegramUser(ctx context.Context, telegramID int64, username, firstName string) (u core.User, created bool, err error) {
	u, err = s.users.GetUserByTelegramID(ctx, telegramID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, false, fmt.Errorf("lookup telegram user: %w", err)
	}

	name := strings.TrimSpace(firstName)
	if name == "" {
		name = strings.TrimSpace(username)
	}
	if name == "" {
		name = "User" + strconv.FormatInt(telegramID, 10)
	}
	if utf8.RuneCountInString(name) > 100 {
		name = string([]rune(name)[:100])
	}

	u, err = s.users.CreateUser(ctx, core.User{
		TelegramID:      &telegramID,
		DisplayName:     name,
		DefaultCurrency: s.defaultCurrency,
		IsActive:        true,
	})
	if errors.Is(err, core.ErrConflict) {
		// Lost a race with a concurrent update from the same chat.
		u, err = s.users.GetUserByTelegramID(ctx, telegramID)
		return u, false, err
	}
	if err != nil {
		return core.User{}, false, err
	}
	s.logger.InfoContext(ctx, "Telegram user created", log.FieldUserID, u.ID, log.FieldTelegramID, telegramID)
	return u, true, nil
}

// GenerateLinkCode issues a one-time code the user can send to the bot.
func (s *UserService) GenerateLinkCode(ctx context.Context, userID string) (string, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return "", err
	}
	return s.linker.Issue(ctx, userID)
}

// LinkTelegram redeems code for telegramID. It returns false when the code
// is unknown or expired.
func (s *UserService) LinkTelegram(ctx context.Context, code string, telegramID int64) (bool, error) {
	return s.linker.Redeem(ctx, code, telegramID)
}

// LinkCodeTTL is how long issued codes stay valid.
func (s *UserService) LinkCodeTTL() time.Duration {
	return s.linker.ttl
}
