package commands

import (
	"context"

	"scanledger/internal/domain/qrcode"
	"scanledger/internal/domain/user"
	"scanledger/internal/infra"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBusinessNotFound = errs.New("business not found")
	ErrNotCodeOwner     = errs.New("not the owner of this qr code")
	ErrDomainValidation = errs.New("domain validation error")
)

type CreateQRCodeParams struct {
	BusinessID uuid.UUID
	CodeType   string
	Config     qrcode.Config
}

// Actor identifies who is performing a mutation. Admins bypass the ownership
// check.
type Actor struct {
	UserID uuid.UUID
	Role   user.Role
}

type QRCodeCommands interface {
	Create(ctx context.Context, actor Actor, params CreateQRCodeParams) (uuid.UUID, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error
	Reactivate(ctx context.Context, actor Actor, id uuid.UUID) error
}

type qrCodeCommandsImpl struct {
	uow shared.UnitOfWork
}

func NewQRCodeCommands(uow shared.UnitOfWork) QRCodeCommands {
	return &qrCodeCommandsImpl{uow: uow}
}

func (c *qrCodeCommandsImpl) Create(ctx context.Context, actor Actor, params CreateQRCodeParams) (uuid.UUID, error) {
	codeType, err := qrcode.NewCodeType(params.CodeType)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}

	code, err := qrcode.New(uuid.New(), params.BusinessID, codeType, params.Config)
	if err != nil {
		return uuid.Nil, errs.Mark(err, ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := c.authorizeBusiness(ctx, tx, actor, params.BusinessID); err != nil {
			return err
		}
		if err := tx.QRCodes().Create(ctx, code); err != nil {
			if infra.IsKind(err, infra.KindForeignKeyViolated) {
				return ErrBusinessNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return code.ID(), nil
}

func (c *qrCodeCommandsImpl) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	return c.setActive(ctx, actor, id, false)
}

func (c *qrCodeCommandsImpl) Reactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	return c.setActive(ctx, actor, id, true)
}

// setActive toggles a code. History survives either way: codes are never
// deleted, and a reactivated code resumes its counter where it stopped.
func (c *qrCodeCommandsImpl) setActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().QRCodeByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrQRCodeNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := c.authorizeBusiness(ctx, tx, actor, snap.BusinessID); err != nil {
			return err
		}

		if err := tx.QRCodes().SetActive(ctx, id, active); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrQRCodeNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (c *qrCodeCommandsImpl) authorizeBusiness(ctx context.Context, tx shared.Tx, actor Actor, businessID uuid.UUID) error {
	if actor.Role == user.RoleAdmin {
		return nil
	}
	ownerID, err := tx.Reads().BusinessOwnerByID(ctx, businessID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrBusinessNotFound
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if ownerID != actor.UserID {
		return ErrNotCodeOwner
	}
	return nil
}
