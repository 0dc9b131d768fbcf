package models

import (
	"errors"
	"fmt"
	"log"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/gobuffalo/pop/v6"
	"github.com/gofrs/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

func init() {
	// initialize model validation library
	mValidate = validator.New()

	// register custom validators for custom types
	for tag, vFunc := range fieldValidators {
		if err := mValidate.RegisterValidation(tag, vFunc, false); err != nil {
			log.Fatal(fmt.Errorf("failed to register validation for %s: %s", tag, err))
		}
	}

	// register struct-level validators
	mValidate.RegisterStructValidation(claimStructLevelValidation, Claim{})
	mValidate.RegisterStructValidation(claimCreateInputStructLevelValidation, api.ClaimCreateInput{})
	mValidate.RegisterStructValidation(lineItemInputStructLevelValidation, api.LineItemInput{})
}

// Connect opens a database connection for the named pop environment
func Connect(env string) (*pop.Connection, error) {
	c, err := pop.Connect(env)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database ... %w", err)
	}
	pop.Debug = env == domain.EnvDevelopment
	return c, nil
}

func fieldByName(i any, name ...string) reflect.Value {
	if len(name) < 1 {
		return reflect.Value{}
	}
	f := reflect.ValueOf(i).Elem().FieldByName(name[0])
	if !f.IsValid() {
		return fieldByName(i, name[1:]...)
	}
	return f
}

func create(tx *pop.Connection, m any) error {
	uuidField := fieldByName(m, "ID")
	if uuidField.IsValid() && uuidField.Interface().(uuid.UUID).Version() == 0 {
		uuidField.Set(reflect.ValueOf(domain.GetUUID()))
	}

	valErrs, err := tx.ValidateAndCreate(m)
	if err != nil {
		return appErrorFromDB(err, api.ErrorCreateFailure)
	}

	if valErrs.HasAny() {
		return api.NewAppError(
			errors.New(flattenPopErrors(valErrs)),
			api.ErrorValidation,
			api.CategoryUser,
		)
	}
	return nil
}

func appErrorFromDB(err error, defaultKey api.ErrorKey) error {
	if err == nil {
		return nil
	}

	appErr := api.NewAppError(err, defaultKey, api.CategoryInternal)

	if !domain.IsOtherThanNoRows(err) {
		appErr.Category = api.CategoryNotFound
		appErr.Key = api.ErrorNoRows
		return appErr
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		appErr.Err = fmt.Errorf("%w Detail: %s", err, pgError.Detail)

		switch pgError.Code {
		case pgerrcode.ForeignKeyViolation:
			appErr.Key = api.ErrorForeignKeyViolation
			appErr.Category = api.CategoryUser
		case pgerrcode.UniqueViolation:
			appErr.Key = api.ErrorUniqueKeyViolation
			appErr.Category = api.CategoryUser
		case pgerrcode.SerializationFailure, pgerrcode.LockNotAvailable:
			appErr.Key = api.ErrorVersionConflict
			appErr.Category = api.CategoryConflict
		}
	}

	return appErr
}

// notFound is the error for a claim id that no repository knows
func notFound(id uuid.UUID) error {
	err := fmt.Errorf("claim %s not found", id)
	return api.NewAppError(err, api.ErrorResourceNotFound, api.CategoryNotFound).WithExtra("id", id)
}

func versionConflict(id uuid.UUID, version int) error {
	err := fmt.Errorf("claim %s was modified since version %d was read", id, version)
	return api.NewAppError(err, api.ErrorVersionConflict, api.CategoryConflict)
}
