package domain

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/installment-ledger/pkg/errors"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

// Commands are validated once, at the boundary, before they reach the ledger.

type RegisterPaymentCommand struct {
	ActorID          string          `json:"actor_id" validate:"required"`
	LoanID           uuid.UUID       `json:"loan_id" validate:"required"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	ExtraAmount      decimal.Decimal `json:"extra_amount" validate:"gte=0"`
	Date             time.Time       `json:"date" validate:"required"`
	Week             int             `json:"week" validate:"gt=0"`
	ApplyToArrears   bool            `json:"apply_to_arrears"`
	IsFullSettlement bool            `json:"is_full_settlement"`
}

func (c RegisterPaymentCommand) Validate() error { return validateCommand(c) }

// Received is the total cash of the payment.
func (c RegisterPaymentCommand) Received() decimal.Decimal {
	return c.Amount.Add(c.ExtraAmount)
}

type RecordArrearsCommand struct {
	ActorID      string     `json:"actor_id" validate:"required"`
	LoanID       uuid.UUID  `json:"loan_id" validate:"required"`
	Date         time.Time  `json:"date" validate:"required"`
	Week         int        `json:"week" validate:"gt=0"`
	ExpectedDate *time.Time `json:"expected_date,omitempty"`
}

func (c RecordArrearsCommand) Validate() error { return validateCommand(c) }

type UpdatePaymentCommand struct {
	ActorID     string          `json:"actor_id" validate:"required"`
	PaymentID   uuid.UUID       `json:"payment_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	ExtraAmount decimal.Decimal `json:"extra_amount" validate:"gte=0"`
	Date        time.Time       `json:"date" validate:"required"`
	Status      PaymentStatus   `json:"status" validate:"omitempty,payment_status"`
}

func (c UpdatePaymentCommand) Validate() error { return validateCommand(c) }

type ReversePaymentCommand struct {
	ActorID   string    `json:"actor_id" validate:"required"`
	PaymentID uuid.UUID `json:"payment_id" validate:"required"`
}

func (c ReversePaymentCommand) Validate() error { return validateCommand(c) }

type CreateLoanCommand struct {
	ActorID     string          `json:"actor_id" validate:"required"`
	ClientID    uuid.UUID       `json:"client_id" validate:"required"`
	Principal   decimal.Decimal `json:"principal" validate:"gt=0"`
	TermWeeks   int             `json:"term_weeks" validate:"gte=0"`
	Installment decimal.Decimal `json:"installment" validate:"gte=0"`
	StartDate   time.Time       `json:"start_date" validate:"required"`
}

func (c CreateLoanCommand) Validate() error { return validateCommand(c) }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Decimals are compared by sign only, so a float view is enough here.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		return PaymentStatus(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Sprintf("register payment_status validation: %v", err))
	}

	// The type func above hides the exact value from field validators, so
	// cent precision is checked at struct level.
	v.RegisterStructValidation(moneyPrecision,
		RegisterPaymentCommand{}, UpdatePaymentCommand{}, CreateLoanCommand{})

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	return v
}

func moneyPrecision(sl validator.StructLevel) {
	switch c := sl.Current().Interface().(type) {
	case RegisterPaymentCommand:
		reportSubCent(sl, c.Amount, "amount", "Amount")
		reportSubCent(sl, c.ExtraAmount, "extra_amount", "ExtraAmount")
	case UpdatePaymentCommand:
		reportSubCent(sl, c.Amount, "amount", "Amount")
		reportSubCent(sl, c.ExtraAmount, "extra_amount", "ExtraAmount")
	case CreateLoanCommand:
		reportSubCent(sl, c.Principal, "principal", "Principal")
		reportSubCent(sl, c.Installment, "installment", "Installment")
	}
}

// reportSubCent flags money finer than utils.RoundMoney keeps.
func reportSubCent(sl validator.StructLevel, d decimal.Decimal, field, structField string) {
	if !d.Equal(utils.RoundMoney(d)) {
		sl.ReportError(d, field, structField, "money", "")
	}
}

func validateCommand(c interface{}) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return customError.WrapValidation(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return customError.WrapValidation(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", fe.Field(), fe.Param())
	case "money":
		return fmt.Sprintf("%s must not have more than two decimal places", fe.Field())
	case "payment_status":
		return fmt.Sprintf("%s is not a known payment status", fe.Field())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}
