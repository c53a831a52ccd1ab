package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so errors match the config file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the structural rules of a configuration and the ladder
// invariants the state machine relies on: unique step ids, strictly
// increasing amounts, unique answer ids per question, and correct ids that
// are a subset of the answers. Errors wrap ErrInvalidConfig.
func (c GameConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	stepIDs := make(map[string]struct{}, len(c.Steps))
	for i, step := range c.Steps {
		if _, dup := stepIDs[step.ID]; dup {
			return fmt.Errorf("%w: duplicate step id %q", ErrInvalidConfig, step.ID)
		}
		stepIDs[step.ID] = struct{}{}

		if i > 0 && step.Amount <= c.Steps[i-1].Amount {
			return fmt.Errorf("%w: step %q amount %v is not greater than previous %v",
				ErrInvalidConfig, step.ID, step.Amount, c.Steps[i-1].Amount)
		}

		answerIDs := make(map[AnswerID]struct{}, len(step.Question.Answers))
		for _, a := range step.Question.Answers {
			if _, dup := answerIDs[a.ID]; dup {
				return fmt.Errorf("%w: step %q has duplicate answer id %q", ErrInvalidConfig, step.ID, a.ID)
			}
			answerIDs[a.ID] = struct{}{}
		}

		correct := make(map[AnswerID]struct{}, len(step.Question.CorrectAnswerIDs))
		for _, id := range step.Question.CorrectAnswerIDs {
			if _, ok := answerIDs[id]; !ok {
				return fmt.Errorf("%w: step %q correct answer %q is not an answer", ErrInvalidConfig, step.ID, id)
			}
			if _, dup := correct[id]; dup {
				return fmt.Errorf("%w: step %q repeats correct answer %q", ErrInvalidConfig, step.ID, id)
			}
			correct[id] = struct{}{}
		}
	}
	return nil
}
