// File: internal/usecase/promo_code_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"promo-redemption/internal/domain"
	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
	ucport "promo-redemption/internal/domain/ports/usecase"
	"promo-redemption/internal/infra/logging"
	"promo-redemption/internal/infra/metrics"
)

// PromoCodeUseCase issues promo codes and redeems them against subscriptions.
type PromoCodeUseCase interface {
	// Create validates and stores a new code. A generated code is used when
	// in.Code is empty. Returns domain.ErrDuplicateCode if the code exists.
	Create(ctx context.Context, in CreatePromoCodeInput) (*model.PromoCode, error)

	// Apply redeems rawCode for userID in a single transaction.
	Apply(ctx context.Context, userID, rawCode string) (*ApplyResult, error)

	Get(ctx context.Context, rawCode string) (*model.PromoCode, error)

	// ListUsages returns the newest ledger rows of a code.
	ListUsages(ctx context.Context, rawCode string) ([]*model.PromoCodeUsage, error)

	// SetDisabled flips the kill switch of a code.
	SetDisabled(ctx context.Context, actorID *string, rawCode string, disabled bool) (*model.PromoCode, error)
}

// CreatePromoCodeInput carries creation parameters. A zero ValidFrom means now.
type CreatePromoCodeInput struct {
	Action      model.PromoAction
	ValidFrom   time.Time
	ValidUntil  time.Time
	MaxUses     int
	Code        string
	CreatedBy   *string
	Description string
}

// ApplyResult is the outcome of a successful redemption.
type ApplyResult struct {
	State     model.SubscriptionState
	DaysAdded int
}

// PromoCodeSettings tunes code generation and listing.
type PromoCodeSettings struct {
	CodeLength     int
	UsageListLimit int
}

var _ PromoCodeUseCase = (*promoCodeUC)(nil)

type promoCodeUC struct {
	codes    repository.PromoCodeRepository
	usages   repository.PromoCodeUsageRepository
	extender ucport.SubscriptionExtender
	audit    ucport.AuditRecorder
	tx       repository.TransactionManager
	settings PromoCodeSettings
	devMode  bool
	log      *zerolog.Logger
	now      func() time.Time
}

func NewPromoCodeUseCase(
	codes repository.PromoCodeRepository,
	usages repository.PromoCodeUsageRepository,
	extender ucport.SubscriptionExtender,
	audit ucport.AuditRecorder,
	tx repository.TransactionManager,
	settings PromoCodeSettings,
	devMode bool,
	logger *zerolog.Logger,
) PromoCodeUseCase {
	if settings.CodeLength <= 0 {
		settings.CodeLength = 8
	}
	if settings.UsageListLimit <= 0 {
		settings.UsageListLimit = 100
	}
	return &promoCodeUC{
		codes:    codes,
		usages:   usages,
		extender: extender,
		audit:    audit,
		tx:       tx,
		settings: settings,
		devMode:  devMode,
		log:      logger,
		now:      time.Now,
	}
}

func (uc *promoCodeUC) Create(ctx context.Context, in CreatePromoCodeInput) (*model.PromoCode, error) {
	log := logging.With(ctx, uc.log)
	defer logging.TraceDuration(log, "PromoCodeUC.Create")()

	now := uc.now()
	validFrom := in.ValidFrom
	if validFrom.IsZero() {
		validFrom = now
	}

	code := model.NormalizeCode(in.Code)
	if code == "" {
		generated, err := generatePromoCode(uc.settings.CodeLength)
		if err != nil {
			return nil, domain.NewInfraError("generate promo code", err)
		}
		code = generated
	}

	p, err := model.NewPromoCode(uuid.NewString(), code, in.Action, validFrom, in.ValidUntil, in.MaxUses, in.CreatedBy, in.Description, now)
	if err != nil {
		return nil, domain.NewValidationError(domain.ReasonInvalidInput, err)
	}

	if err := uc.codes.Create(ctx, repository.NoTX, p); err != nil {
		if errors.Is(err, domain.ErrDuplicateCode) {
			log.Info().Str("code", logging.Redact(code, uc.devMode)).Msg("promo code already exists")
			return nil, domain.ErrDuplicateCode
		}
		if errors.Is(err, domain.ErrInvalidArgument) {
			log.Warn().Err(err).Msg("promo code rejected by storage constraint")
			return nil, domain.NewValidationError(domain.ReasonInvalidInput, domain.ErrUnknownCreator)
		}
		log.Error().Err(err).Msg("failed to create promo code")
		return nil, domain.NewInfraError("create promo code", err)
	}

	metrics.IncPromoCodeCreated(string(p.Action))
	log.Info().
		Str("code", logging.Redact(p.Code, uc.devMode)).
		Str("action", string(p.Action)).
		Int("max_uses", p.MaxUses).
		Msg("promo code created")

	if p.CreatedBy != nil {
		uc.audit.Record(ctx, model.AuditEntry{
			ActorID:     p.CreatedBy,
			ActionType:  model.AuditActionPromoCode,
			Description: fmt.Sprintf("created promo code %s", p.Code),
			TargetID:    p.ID,
			Details: map[string]any{
				"code":        p.Code,
				"action":      string(p.Action),
				"max_uses":    p.MaxUses,
				"valid_from":  p.ValidFrom,
				"valid_until": p.ValidUntil,
			},
		})
	}
	return p, nil
}

// Apply runs the redemption protocol: lock the code row, check it under the
// lock, extend the subscription, bump the usage counter and append a ledger
// row. A code that exists but cannot be used still commits its failed ledger
// row before the rejection is returned.
func (uc *promoCodeUC) Apply(ctx context.Context, userID, rawCode string) (*ApplyResult, error) {
	start := time.Now()
	log := logging.With(ctx, uc.log)
	defer logging.TraceDuration(log, "PromoCodeUC.Apply")()

	code := model.NormalizeCode(rawCode)
	if code == "" {
		metrics.ObserveRedemption(domain.ReasonInvalidInput, time.Since(start))
		return nil, domain.NewValidationError(domain.ReasonInvalidInput, domain.ErrCodeRequired)
	}
	if userID == "" {
		metrics.ObserveRedemption(domain.ReasonInvalidInput, time.Since(start))
		return nil, domain.NewValidationError(domain.ReasonInvalidInput, domain.ErrInvalidArgument)
	}

	var (
		result   *ApplyResult
		rejected *domain.ValidationError
		promo    *model.PromoCode
	)
	err := uc.tx.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		result, rejected, promo = nil, nil, nil

		p, err := uc.codes.FindByCodeForUpdate(ctx, tx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError(domain.ReasonNotFound, domain.ErrCodeNotFound)
			}
			return domain.NewInfraError("lock promo code", err)
		}
		promo = p

		now := uc.now()
		if !p.CanUse(now) {
			failed := model.NewFailedUsage(ulid.Make().String(), p.ID, userID, domain.ReasonCannotUse, now)
			if err := uc.usages.Record(ctx, tx, failed); err != nil {
				return domain.NewInfraError("record failed usage", err)
			}
			rejected = domain.NewValidationError(domain.ReasonCannotUse, domain.ErrCodeCannotUse)
			return nil // commit the ledger row
		}

		days := p.DaysToAdd()
		state, err := uc.extender.Extend(ctx, tx, userID, days)
		if err != nil {
			return domain.NewInfraError("extend subscription", err)
		}
		if err := uc.codes.IncrementUsage(ctx, tx, p); err != nil {
			return domain.NewInfraError("increment usage", err)
		}
		ok := model.NewSuccessfulUsage(ulid.Make().String(), p.ID, userID, days, now)
		if err := uc.usages.Record(ctx, tx, ok); err != nil {
			return domain.NewInfraError("record usage", err)
		}
		result = &ApplyResult{State: *state, DaysAdded: days}
		return nil
	})

	redacted := logging.Redact(code, uc.devMode)
	if err != nil {
		if ve, ok := domain.IsValidation(err); ok {
			metrics.ObserveRedemption(ve.Reason, time.Since(start))
			log.Info().Str("code", redacted).Str("reason", ve.Reason).Msg("promo code rejected")
			return nil, ve
		}
		if !domain.IsInfra(err) {
			err = domain.NewInfraError("apply promo code", err)
		}
		metrics.ObserveRedemption("error", time.Since(start))
		log.Error().Err(err).Str("code", redacted).Msg("promo code redemption failed")
		return nil, err
	}
	if rejected != nil {
		metrics.ObserveRedemption(rejected.Reason, time.Since(start))
		log.Info().Str("code", redacted).Str("reason", rejected.Reason).Msg("promo code rejected")
		return nil, rejected
	}

	metrics.ObserveRedemption("success", time.Since(start))
	log.Info().
		Str("code", redacted).
		Int("days_added", result.DaysAdded).
		Time("expires_at", result.State.ExpiresAt).
		Msg("promo code applied")

	actor := userID
	uc.audit.Record(ctx, model.AuditEntry{
		ActorID:     &actor,
		ActionType:  model.AuditActionPromoCodeApplied,
		Description: fmt.Sprintf("applied promo code %s", promo.Code),
		TargetID:    promo.ID,
		Details: map[string]any{
			"code":       promo.Code,
			"days_added": result.DaysAdded,
			"expires_at": result.State.ExpiresAt,
		},
	})
	return result, nil
}

func (uc *promoCodeUC) Get(ctx context.Context, rawCode string) (*model.PromoCode, error) {
	code := model.NormalizeCode(rawCode)
	if code == "" {
		return nil, domain.NewValidationError(domain.ReasonInvalidInput, domain.ErrCodeRequired)
	}
	p, err := uc.codes.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		return nil, uc.lookupError(ctx, "get promo code", err)
	}
	return p, nil
}

func (uc *promoCodeUC) ListUsages(ctx context.Context, rawCode string) ([]*model.PromoCodeUsage, error) {
	p, err := uc.Get(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	rows, err := uc.usages.ListByCode(ctx, repository.NoTX, p.ID, uc.settings.UsageListLimit)
	if err != nil {
		return nil, uc.lookupError(ctx, "list promo code usages", err)
	}
	return rows, nil
}

func (uc *promoCodeUC) SetDisabled(ctx context.Context, actorID *string, rawCode string, disabled bool) (*model.PromoCode, error) {
	log := logging.With(ctx, uc.log)
	code := model.NormalizeCode(rawCode)
	if code == "" {
		return nil, domain.NewValidationError(domain.ReasonInvalidInput, domain.ErrCodeRequired)
	}

	var out *model.PromoCode
	err := uc.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := uc.codes.FindByCodeForUpdate(ctx, tx, code)
		if err != nil {
			return err
		}
		p.Disabled = disabled
		if err := uc.codes.SetDisabled(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, uc.lookupError(ctx, "set promo code disabled", err)
	}

	log.Info().Str("code", logging.Redact(code, uc.devMode)).Bool("disabled", disabled).Msg("promo code toggled")
	uc.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		ActionType:  model.AuditActionPromoCodeToggled,
		Description: fmt.Sprintf("set disabled=%t on promo code %s", disabled, out.Code),
		TargetID:    out.ID,
		Details:     map[string]any{"code": out.Code, "disabled": disabled},
	})
	return out, nil
}

// lookupError maps a missing code to a not_found ValidationError and anything
// else to a logged InfraError.
func (uc *promoCodeUC) lookupError(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError(domain.ReasonNotFound, domain.ErrCodeNotFound)
	}
	logging.With(ctx, uc.log).Error().Err(err).Str("op", op).Msg("promo code operation failed")
	return domain.NewInfraError(op, err)
}
