package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-rest-api/internal/domain/user"
	pkgerrors "user-rest-api/pkg/errors"
	"user-rest-api/pkg/validation"
)

const (
	msgIDRequired     = "id is required"
	msgIDNotFound     = "the given id does not exist"
	msgEmailInvalid   = "the given email is not valid"
	msgEmailInUse     = "the given email is already in use by another user"
	msgAtLeastOne     = "at least one field must be supplied"
	fmtFieldRequired  = "%s is required"
	fmtFieldNotEmpty  = "%s must not be empty"
	fmtFieldMalformed = "%s is invalid"
)

// ValidateShow requires the path id to name an existing user.
func (uc *UserUsecase) ValidateShow(ctx context.Context, in ShowUserRequest) (*ShowUserInput, error) {
	var errs pkgerrors.ValidationErrors

	var found *domain.User
	if in.ID == "" {
		errs = append(errs, pkgerrors.NewFieldError("id", msgIDRequired, pkgerrors.LocationParams))
	} else {
		u, err := uc.resolveID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			errs = append(errs, pkgerrors.NewFieldError("id", msgIDNotFound, pkgerrors.LocationParams).WithValue(in.ID))
		}
		found = u
	}

	if err := uc.reject(OpShow, errs); err != nil {
		return nil, err
	}
	return &ShowUserInput{User: *found}, nil
}

// ValidateCreate requires name, username and a well-formed, unused email.
func (uc *UserUsecase) ValidateCreate(ctx context.Context, in CreateUserRequest) (*CreateUserInput, error) {
	errs, err := uc.structErrors(in)
	if err != nil {
		return nil, err
	}

	if !hasField(errs, "email") {
		taken, err := uc.emailTaken(ctx, in.Email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = append(errs, pkgerrors.NewFieldError("email", msgEmailInUse, pkgerrors.LocationBody).WithValue(in.Email))
		}
	}

	if err := uc.reject(OpCreate, errs); err != nil {
		return nil, err
	}
	return &CreateUserInput{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
	}, nil
}

// ValidateUpdate requires an existing id and at least one non-empty field.
// Supplied fields may not be empty; a supplied email must be well formed
// and not belong to any other user.
func (uc *UserUsecase) ValidateUpdate(ctx context.Context, in UpdateUserRequest) (*UpdateUserInput, error) {
	var errs pkgerrors.ValidationErrors

	var found *domain.User
	if in.ID == "" {
		errs = append(errs, pkgerrors.NewFieldError("id", msgIDRequired, pkgerrors.LocationBody))
	} else {
		u, err := uc.resolveID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			errs = append(errs, pkgerrors.NewFieldError("id", msgIDNotFound, pkgerrors.LocationBody).WithValue(in.ID))
		}
		found = u
	}

	fields := []struct {
		name  string
		value domain.Optional[string]
	}{
		{"name", in.Name},
		{"username", in.Username},
		{"email", in.Email},
	}

	supplied := false
	for _, f := range fields {
		v, ok := f.value.Get()
		switch {
		case ok && v == "":
			errs = append(errs, pkgerrors.NewFieldError(f.name, fmt.Sprintf(fmtFieldNotEmpty, f.name), pkgerrors.LocationBody))
		case ok:
			supplied = true
		}
	}
	if !supplied {
		errs = append(errs, &pkgerrors.FieldError{Message: msgAtLeastOne, Location: pkgerrors.LocationBody})
	}

	if email, ok := in.Email.Get(); ok && email != "" {
		if err := uc.validate.Var(email, validation.EmailTag); err != nil {
			errs = append(errs, pkgerrors.NewFieldError("email", msgEmailInvalid, pkgerrors.LocationBody).WithValue(email))
		} else {
			var self int64
			if found != nil {
				self = found.ID
			}
			taken, err := uc.emailTaken(ctx, email, self)
			if err != nil {
				return nil, err
			}
			if taken {
				errs = append(errs, pkgerrors.NewFieldError("email", msgEmailInUse, pkgerrors.LocationBody).WithValue(email))
			}
		}
	}

	if err := uc.reject(OpUpdate, errs); err != nil {
		return nil, err
	}
	return &UpdateUserInput{
		ID: found.ID,
		Patch: domain.Patch{
			Name:     in.Name,
			Username: in.Username,
			Email:    in.Email,
		},
	}, nil
}

// ValidateDelete only requires the query id to be present.
func (uc *UserUsecase) ValidateDelete(_ context.Context, in DeleteUserRequest) (*DeleteUserInput, error) {
	var errs pkgerrors.ValidationErrors

	if in.ID == "" {
		errs = append(errs, pkgerrors.NewFieldError("id", msgIDRequired, pkgerrors.LocationQuery))
	}

	if err := uc.reject(OpDelete, errs); err != nil {
		return nil, err
	}

	id, _ := parseID(in.ID)
	return &DeleteUserInput{ID: id}, nil
}

// resolveID looks up the user named by a raw id. Ids that cannot be parsed
// resolve to nothing without a query.
func (uc *UserUsecase) resolveID(ctx context.Context, raw string) (*domain.User, error) {
	id, ok := parseID(raw)
	if !ok {
		return nil, nil
	}
	return uc.repo.GetByID(ctx, id)
}

// emailTaken reports whether a user other than self owns email.
func (uc *UserUsecase) emailTaken(ctx context.Context, email string, self int64) (bool, error) {
	owners, err := uc.repo.GetByKey(ctx, "email", email)
	if err != nil {
		return false, err
	}
	for _, o := range owners {
		if o.ID != self {
			return true, nil
		}
	}
	return false, nil
}

// structErrors runs the struct tag rules of in and converts every failure
// to a body field error.
func (uc *UserUsecase) structErrors(in any) (pkgerrors.ValidationErrors, error) {
	err := uc.validate.Struct(in)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, pkgerrors.NewInternalError("validator misuse", err)
	}

	errs := make(pkgerrors.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			errs = append(errs, pkgerrors.NewFieldError(fe.Field(), fmt.Sprintf(fmtFieldRequired, fe.Field()), pkgerrors.LocationBody))
		case validation.EmailTag:
			errs = append(errs, pkgerrors.NewFieldError(fe.Field(), msgEmailInvalid, pkgerrors.LocationBody).WithValue(fe.Value()))
		default:
			errs = append(errs, pkgerrors.NewFieldError(fe.Field(), fmt.Sprintf(fmtFieldMalformed, fe.Field()), pkgerrors.LocationBody).WithValue(fe.Value()))
		}
	}
	return errs, nil
}

// reject logs and returns the accumulated errors, or nil when there are none.
func (uc *UserUsecase) reject(op Operation, errs pkgerrors.ValidationErrors) error {
	if len(errs) == 0 {
		return nil
	}

	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	uc.log.Info("request rejected by validation",
		zap.String("operation", string(op)),
		zap.Strings("fields", fields),
	)
	return errs
}

func hasField(errs pkgerrors.ValidationErrors, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
