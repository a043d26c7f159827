package domain

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func (s Session) Validate() error {
	if err := structValidator().Struct(s); err != nil {
		return fmt.Errorf("%w: session: %w", ErrMalformedValue, err)
	}
	return nil
}

func (s ServerSummary) Validate() error {
	if err := structValidator().Struct(s); err != nil {
		return fmt.Errorf("%w: server: %w", ErrMalformedValue, err)
	}
	return nil
}

func (p ProfileEntry) Validate() error {
	if err := structValidator().Struct(p); err != nil {
		return fmt.Errorf("%w: profile: %w", ErrMalformedValue, err)
	}
	return nil
}
