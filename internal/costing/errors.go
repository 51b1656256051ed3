package costing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	ErrCodeRecipeNotFound     ErrorCode = "RECIPE_NOT_FOUND"
	ErrCodeIngredientNotFound ErrorCode = "INGREDIENT_NOT_FOUND"
	ErrCodeInvalidTarget      ErrorCode = "INVALID_SCALING_TARGET"
	ErrCodeNotScalable        ErrorCode = "RECIPE_NOT_SCALABLE"
	ErrCodeInvalidDemand      ErrorCode = "INVALID_DEMAND"
	ErrCodeInvalidItem        ErrorCode = "INVALID_ITEM"
	ErrCodeSelfReference      ErrorCode = "SELF_REFERENCE"
	ErrCodeDuplicateID        ErrorCode = "DUPLICATE_ID"

	// ErrCodeCycleDetected is a configuration error: the composition graph
	// contains a recipe that (indirectly) contains itself.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
)

// EngineError is returned by every engine operation that can fail.
//
// Degenerate data (zero yield, zero conversion ratio, dangling references)
// never produces an EngineError; it resolves to a zero cost instead.
type EngineError struct {
	Code     ErrorCode
	Message  string
	RecipeID uuid.UUID

	// Path is the chain of recipe ids that closes a cycle, first id repeated last.
	Path []uuid.UUID
}

func (e *EngineError) Error() string {
	if len(e.Path) > 0 {
		ids := make([]string, len(e.Path))
		for i, id := range e.Path {
			ids[i] = id.String()
		}
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(ids, " -> "))
	}
	if e.RecipeID != uuid.Nil {
		return fmt.Sprintf("%s: %s (recipe=%s)", e.Code, e.Message, e.RecipeID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCycleError reports whether err is (or wraps) a cycle detection error.
func IsCycleError(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Code == ErrCodeCycleDetected
}

// IsNotFound reports whether err is (or wraps) an unresolved recipe or ingredient id.
func IsNotFound(err error) bool {
	var ee *EngineError
	if !errors.As(err, &ee) {
		return false
	}
	return ee.Code == ErrCodeRecipeNotFound || ee.Code == ErrCodeIngredientNotFound
}

// IsCallerError reports whether err was caused by invalid input rather than
// by the state of the catalog.
func IsCallerError(err error) bool {
	var ee *EngineError
	if !errors.As(err, &ee) {
		return false
	}
	switch ee.Code {
	case ErrCodeInvalidTarget, ErrCodeNotScalable, ErrCodeInvalidDemand,
		ErrCodeInvalidItem, ErrCodeSelfReference, ErrCodeDuplicateID:
		return true
	}
	return false
}

func recipeNotFound(id uuid.UUID) *EngineError {
	return &EngineError{Code: ErrCodeRecipeNotFound, Message: "recipe not found", RecipeID: id}
}

func newCycleError(path []uuid.UUID) *EngineError {
	return &EngineError{
		Code:    ErrCodeCycleDetected,
		Message: "recipe composition contains a cycle",
		Path:    path,
	}
}
