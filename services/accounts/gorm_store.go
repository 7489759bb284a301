package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/tech-arch1tect/accounts/services/apperr"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GormStore struct {
	db     *gorm.DB
	clock  clock.Clock
	logger *logging.Service
}

func NewGormStore(db *gorm.DB, clk clock.Clock, logger *logging.Service) *GormStore {
	return &GormStore{
		db:     db,
		clock:  clock.OrReal(clk),
		logger: logger.Named("accounts"),
	}
}

func (s *GormStore) Create(ctx context.Context, account *Account) (*Account, error) {
	if account.PasswordHash == "" {
		return nil, apperr.New(apperr.Internal, "refusing to store account without password hash")
	}

	now := s.clock.Now()
	account.ID = 0
	account.Version = 1
	account.CreatedAt = now
	account.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isDuplicateKey(err) {
			s.logger.Debug("account create rejected by unique constraint")
			return nil, ErrDuplicateKey
		}
		s.logger.Error("failed to create account", zap.Error(err))
		return nil, apperr.Internalf(err, "create account")
	}

	return account, nil
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*Account, bool, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*Account, bool, error) {
	return s.findOne(ctx, "email = ?", email)
}

func (s *GormStore) FindByUsername(ctx context.Context, username string) (*Account, bool, error) {
	return s.findOne(ctx, "username = ?", username)
}

func (s *GormStore) FindByVerificationCode(ctx context.Context, code string) (*Account, bool, error) {
	if code == "" {
		return nil, false, nil
	}
	return s.findOne(ctx, "verification_code = ?", code)
}

func (s *GormStore) findOne(ctx context.Context, query string, arg any) (*Account, bool, error) {
	var account Account
	err := s.db.WithContext(ctx).Where(query, arg).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("account lookup failed", zap.Error(err))
		return nil, false, apperr.Internalf(err, "find account")
	}
	return &account, true, nil
}

// Save writes every mutable column guarded by the version read alongside the
// account, then bumps the version on success.
func (s *GormStore) Save(ctx context.Context, account *Account) error {
	now := s.clock.Now()
	readVersion := account.Version

	result := s.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ? AND version = ?", account.ID, readVersion).
		Updates(map[string]any{
			"username":                account.Username,
			"email":                   account.Email,
			"password_hash":           account.PasswordHash,
			"status":                  account.Status,
			"verification_code":       account.VerificationCode,
			"verification_expires_at": account.VerificationExpiresAt,
			"version":                 readVersion + 1,
			"updated_at":              now,
		})
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return ErrDuplicateKey
		}
		s.logger.Error("failed to save account", zap.Error(result.Error), zap.Uint("account_id", account.ID))
		return apperr.Internalf(result.Error, "save account")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&Account{}).Where("id = ?", account.ID).Count(&count).Error; err != nil {
			return apperr.Internalf(err, "save account")
		}
		if count == 0 {
			return ErrNotFound
		}
		s.logger.Warn("stale account write rejected",
			zap.Uint("account_id", account.ID),
			zap.Uint("read_version", readVersion))
		return ErrConcurrentUpdate
	}

	account.Version = readVersion + 1
	account.UpdatedAt = now
	return nil
}

// isDuplicateKey recognises unique violations whether or not the dialector
// translated them into gorm.ErrDuplicatedKey.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
