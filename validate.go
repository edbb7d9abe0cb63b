package babel

import (
	"fmt"
	"math"
)

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 || r.MaxTokens > math.MaxInt32 {
		return fmt.Errorf("max_tokens must be in [0, %d], got %d: %w", math.MaxInt32, r.MaxTokens, ErrValidation)
	}
	if err := ValidateTurns(r.Turns); err != nil {
		return err
	}
	if r.Turns[len(r.Turns)-1].Role != RoleUser {
		return fmt.Errorf("last turn must be from %s: %w", RoleUser, ErrValidation)
	}
	return nil
}

// ValidateTurns checks that turns is non-empty and alternates user,
// assistant, user, ... starting with a user turn.
func ValidateTurns(turns []Turn) error {
	if len(turns) == 0 {
		return fmt.Errorf("no turns: %w", ErrValidation)
	}
	for i, t := range turns {
		want := RoleUser
		if i%2 == 1 {
			want = RoleAssistant
		}
		if t.Role != want {
			return fmt.Errorf("turn %d: want role %s, got %q: %w", i, want, t.Role, ErrValidation)
		}
	}
	return nil
}
