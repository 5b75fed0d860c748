package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors
	ErrUnsupportedTransform = errors.New("unsupported transformation")
	ErrUnsupportedTest      = errors.New("unsupported statistical test")
	ErrMissingCondition     = errors.New("condition not found in sample metadata")
	ErrReplicateMismatch    = errors.New("insufficient replicates for condition")
	ErrDegenerateGrowthRate = errors.New("growth rate divisor too close to zero")

	// Registry errors
	ErrDuplicateScore = errors.New("phenotype score already registered")
	ErrScoreNotFound  = errors.New("phenotype score not found")
	ErrRunNotFound    = errors.New("phenotype run not found")
)

// Error constructors with context
func NewUnsupportedTransformError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedTransform, name)
}

func NewUnsupportedTestError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedTest, name)
}

func NewMissingConditionError(condition string) error {
	return fmt.Errorf("%w: %q", ErrMissingCondition, condition)
}

func NewReplicateMismatchError(condition string, want, got int) error {
	return fmt.Errorf("%w: condition %q has %d samples, need %d", ErrReplicateMismatch, condition, got, want)
}

func NewDegenerateGrowthRateError(divisor, minimum float64) error {
	return fmt.Errorf("%w: |divisor| %g below minimum %g", ErrDegenerateGrowthRate, divisor, minimum)
}

func NewDuplicateScoreError(name string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateScore, name)
}

func NewScoreNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrScoreNotFound, name)
}

func NewRunNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrRunNotFound, name)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnsupportedTransform) ||
		errors.Is(err, ErrUnsupportedTest) ||
		errors.Is(err, ErrMissingCondition) ||
		errors.Is(err, ErrReplicateMismatch) ||
		errors.Is(err, ErrDegenerateGrowthRate)
}

func IsRegistryError(err error) bool {
	return errors.Is(err, ErrDuplicateScore) ||
		errors.Is(err, ErrScoreNotFound) ||
		errors.Is(err, ErrRunNotFound)
}
