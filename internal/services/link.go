package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"centavo/internal/core"
	"centavo/internal/kv"
	"centavo/internal/log"
	"centavo/internal/metrics"
)

const (
	linkCodePrefix   = "link_code:"
	linkCodeDigits   = 6
	linkCodeAttempts = 5
)

var linkCodeSpace = big.NewInt(1_000_000)

// ErrLinkCodeExhausted means no free code was found after several tries.
var ErrLinkCodeExhausted = errors.New("could not allocate a unique link code")

// Linker issues and redeems the short codes that bind a Telegram identity
// to a web account.
type Linker struct {
	codes  kv.Store
	users  UserStore
	ttl    time.Duration
	logger *log.Logger
}

func NewLinker(codes kv.Store, users UserStore, ttl time.Duration, logger *log.Logger) *Linker {
	return &Linker{codes: codes, users: users, ttl: ttl, logger: logger.WithComponent(log.ComponentLink)}
}

// Issue stores a fresh code pointing at userID and returns it.
func (l *Linker) Issue(ctx context.Context, userID string) (string, error) {
	for i := 0; i < linkCodeAttempts; i++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		ok, err := l.codes.SetNX(ctx, linkCodePrefix+code, userID, l.ttl)
		if err != nil {
			return "", fmt.Errorf("store link code: %w", err)
		}
		if ok {
			l.logger.InfoContext(ctx, "Link code issued", log.FieldUserID, userID)
			return code, nil
		}
	}
	return "", ErrLinkCodeExhausted
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, linkCodeSpace)
	if err != nil {
		return "", fmt.Errorf("generate link code: %w", err)
	}
	return fmt.Sprintf("%0*d", linkCodeDigits, n.Int64()), nil
}

// Redeem binds telegramID to the account behind code. When the identity
// belongs to a shadow account, that account is merged into the target; when
// it belongs to another email account, only the identity moves. Redeeming
// for an identity already bound to the target succeeds without changes.
func (l *Linker) Redeem(ctx context.Context, code string, telegramID int64) (bool, error) {
	key := linkCodePrefix + code

	userID, err := l.codes.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		metrics.LinkAttempts.WithLabelValues("invalid_code").Inc()
		return false, nil
	}
	if err != nil {
		metrics.LinkAttempts.WithLabelValues("error").Inc()
		return false, fmt.Errorf("read link code: %w", err)
	}

	target, err := l.users.GetUserByID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		metrics.LinkAttempts.WithLabelValues("invalid_code").Inc()
		if err := l.codes.Delete(ctx, key); err != nil {
			l.logger.WarnContext(ctx, "Failed to delete orphaned link code", log.FieldError, err)
		}
		return false, nil
	}
	if err != nil {
		metrics.LinkAttempts.WithLabelValues("error").Inc()
		return false, err
	}

	result, err := l.bind(ctx, target, telegramID)
	if err != nil {
		metrics.LinkAttempts.WithLabelValues("error").Inc()
		return false, err
	}

	if err := l.codes.Delete(ctx, key); err != nil {
		l.logger.WarnContext(ctx, "Failed to delete redeemed link code", log.FieldError, err)
	}
	metrics.LinkAttempts.WithLabelValues(result).Inc()
	l.logger.InfoContext(ctx, "Telegram identity linked",
		log.FieldUserID, target.ID,
		log.FieldTelegramID, telegramID,
		"result", result)
	return true, nil
}

func (l *Linker) bind(ctx context.Context, target core.User, telegramID int64) (string, error) {
	holder, err := l.users.GetUserByTelegramID(ctx, telegramID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		if err := l.users.BindTelegram(ctx, target.ID, telegramID); err != nil {
			return "", fmt.Errorf("bind telegram: %w", err)
		}
		return "linked", nil
	case err != nil:
		return "", fmt.Errorf("lookup telegram holder: %w", err)
	case holder.ID == target.ID:
		return "already_linked", nil
	case holder.IsShadow():
		if err := l.users.MergeUsers(ctx, holder.ID, target.ID, telegramID); err != nil {
			return "", fmt.Errorf("merge users: %w", err)
		}
		return "merged", nil
	default:
		if err := l.users.BindTelegram(ctx, target.ID, telegramID); err != nil {
			return "", fmt.Errorf("rebind telegram: %w", err)
		}
		return "rebound", nil
	}
}
