package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/entities/supplier"
	"github.com/iota-uz/catalog-api/modules/users/domain/aggregates/user"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/constants"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

var (
	errInvalidFormat        = serrors.Validation("USER_INVALID_JSON", "JSON was not a valid format")
	errSupplierIDRequired   = serrors.Validation("USER_SUPPLIER_REQUIRED", "No supplier id provided for supplier user")
	errInvalidSupplierID    = serrors.Validation("USER_INVALID_SUPPLIER", "Invalid supplier id")
	errCouldNotUpdate       = serrors.Validation("USER_UPDATE_FAILED", "Could not update user")
	errEmailRequired        = serrors.NotFound("USER_EMAIL_REQUIRED", "'email' is a required parameter")
	errAuthenticationFailed = serrors.New(http.StatusForbidden, serrors.KindForbidden, "USER_AUTH_FAILED", "authorization failed", nil)
)

type UserService struct {
	users            user.Repository
	suppliers        supplier.Repository
	bcryptCost       int
	failedLoginLimit int
	now              func() time.Time
}

func NewUserService(users user.Repository, suppliers supplier.Repository, bcryptCost, failedLoginLimit int) *UserService {
	return &UserService{
		users:            users,
		suppliers:        suppliers,
		bcryptCost:       bcryptCost,
		failedLoginLimit: failedLoginLimit,
		now:              time.Now,
	}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "USER")
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errEmailRequired
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.mapError(err, "USER")
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, dto *CreateUserDTO) (*user.User, error) {
	if dto == nil {
		return nil, errInvalidFormat
	}
	role, ok := dto.Ok()
	if !ok {
		return nil, errInvalidFormat
	}
	if role == user.RoleSupplier && dto.SupplierID == nil {
		return nil, errSupplierIDRequired
	}

	password := dto.Password
	if dto.hashPassword() {
		hashed, err := s.hash(password)
		if err != nil {
			return nil, err
		}
		password = hashed
	}

	now := s.now().UTC()
	u := &user.User{
		Name:              strings.TrimSpace(dto.Name),
		EmailAddress:      user.NormalizeEmail(dto.EmailAddress),
		Password:          password,
		Active:            true,
		Role:              role,
		CreatedAt:         now,
		UpdatedAt:         now,
		PasswordChangedAt: now,
	}
	if role == user.RoleSupplier {
		u.SupplierID = dto.SupplierID
	}

	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if u.SupplierID != nil {
			if err := s.attachSupplier(txCtx, u, errInvalidSupplierID); err != nil {
				return err
			}
		}
		return s.users.Create(txCtx, u)
	})
	if err != nil {
		err = s.mapError(err, "USER_CREATE")
		s.logRejected(ctx, "create", u.EmailAddress, err)
		return nil, err
	}
	composables.UseLogger(ctx).WithFields(logrus.Fields{
		"user_id": u.ID,
		"role":    string(u.Role),
	}).Info("users.user.created")
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id int64, dto *UpdateUserDTO) (*user.User, error) {
	if dto == nil {
		return nil, errInvalidFormat
	}
	if err := constants.Validate.Struct(dto); err != nil {
		return nil, errCouldNotUpdate
	}
	var hashed string
	if dto.Password != nil {
		if *dto.Password == "" {
			return nil, errCouldNotUpdate
		}
		var err error
		if hashed, err = s.hash(*dto.Password); err != nil {
			return nil, err
		}
	}

	u, err := composables.InTxResult(ctx, func(txCtx context.Context) (*user.User, error) {
		u, err := s.users.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		now := s.now().UTC()
		if dto.Password != nil {
			u.Password = hashed
			u.PasswordChangedAt = now
		}
		if dto.Active != nil {
			u.Active = *dto.Active
		}
		if dto.Locked != nil {
			u.Locked = *dto.Locked
			if !u.Locked {
				u.FailedLoginCount = 0
			}
		}
		if dto.Name != nil {
			u.Name = strings.TrimSpace(*dto.Name)
		}
		if dto.EmailAddress != nil {
			u.EmailAddress = user.NormalizeEmail(*dto.EmailAddress)
		}
		if dto.Role != nil {
			role, err := user.NewRole(*dto.Role)
			if err != nil {
				return nil, errCouldNotUpdate
			}
			u.Role = role
		}
		if dto.SupplierID != nil {
			u.SupplierID = dto.SupplierID
		}

		if u.Role == user.RoleSupplier {
			if u.SupplierID == nil {
				return nil, errCouldNotUpdate
			}
			if err := s.attachSupplier(txCtx, u, errCouldNotUpdate); err != nil {
				return nil, err
			}
		} else {
			u.SupplierID = nil
			u.SupplierName = ""
		}

		u.UpdatedAt = now
		if err := s.users.Update(txCtx, u); err != nil {
			return nil, err
		}
		return u, nil
	})
	if err != nil {
		err = s.mapError(err, "USER_UPDATE")
		s.logRejected(ctx, "update", fmt.Sprint(id), err)
		return nil, err
	}
	composables.UseLogger(ctx).WithField("user_id", u.ID).Info("users.user.updated")
	return u, nil
}

// Authenticate checks the password of the user with the given e-mail address.
// Failed attempts are committed even though the call returns an error, and
// reaching the configured limit locks the account. The row stays locked while
// the count is read and written back.
func (s *UserService) Authenticate(ctx context.Context, dto *AuthUserDTO) (*user.User, error) {
	if dto == nil || constants.Validate.Struct(dto) != nil {
		return nil, errInvalidFormat
	}

	var matched bool
	u, err := composables.InTxResult(ctx, func(txCtx context.Context) (*user.User, error) {
		u, err := s.users.GetByEmailForUpdate(txCtx, dto.EmailAddress)
		if err != nil {
			return nil, err
		}
		matched = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(dto.Password)) == nil
		if matched {
			if u.FailedLoginCount == 0 {
				return u, nil
			}
			u.FailedLoginCount = 0
		} else {
			u.FailedLoginCount++
			if s.failedLoginLimit > 0 && u.FailedLoginCount >= s.failedLoginLimit {
				u.Locked = true
			}
		}
		if err := s.users.RecordLogin(txCtx, u.ID, u.FailedLoginCount, u.Locked); err != nil {
			return nil, err
		}
		return u, nil
	})
	if err != nil {
		err = s.mapError(err, "USER_AUTH")
		if serrors.IsKind(err, serrors.KindNotFound) {
			recordAuthAttempt("unknown")
		} else {
			recordAuthAttempt("error")
		}
		return nil, err
	}

	logger := composables.UseLogger(ctx).WithField("user_id", u.ID)
	if !matched {
		recordAuthAttempt("rejected")
		logger.WithField("failed_login_count", u.FailedLoginCount).Warn("users.auth.rejected")
		return nil, errAuthenticationFailed
	}
	recordAuthAttempt("ok")
	logger.Info("users.auth.succeeded")
	return u, nil
}

func (s *UserService) attachSupplier(ctx context.Context, u *user.User, notFound error) error {
	sp, err := s.suppliers.GetBySupplierID(ctx, *u.SupplierID)
	if err != nil {
		if errors.Is(err, supplier.ErrSupplierNotFound) {
			return notFound
		}
		return err
	}
	u.SupplierName = sp.Name
	return nil
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errInvalidFormat
		}
		return "", serrors.Internal("USER_INTERNAL", err)
	}
	return string(hashed), nil
}

func (s *UserService) mapError(err error, code string) error {
	if _, ok := serrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return serrors.NotFound(code+"_NOT_FOUND", "user not found")
	case errors.Is(err, user.ErrDuplicateEmail):
		return serrors.Conflict(http.StatusConflict, "USER_DUPLICATE_EMAIL", "Email address already in use", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return serrors.Conflict(http.StatusBadRequest, "USER_INVALID_SUPPLIER", "Invalid supplier id", err)
		case "23514", "23502": // check_violation, not_null_violation
			return serrors.Conflict(http.StatusBadRequest, code+"_CONSTRAINT", "JSON was not a valid format", err)
		}
	}
	return serrors.Internal("USER_INTERNAL", err)
}

func (s *UserService) logRejected(ctx context.Context, operation, subject string, err error) {
	entry := composables.UseLogger(ctx).WithFields(logrus.Fields{
		"operation": operation,
		"subject":   subject,
	}).WithError(err)
	if serrors.IsKind(err, serrors.KindInternal) {
		entry.Error("users.user.failed")
		return
	}
	entry.Warn("users.user.rejected")
}
