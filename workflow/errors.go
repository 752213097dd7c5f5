package workflow

import (
	"errors"
	"fmt"

	"github.com/c360studio/rfpflow/llm"
)

// StageError marks an unrecoverable failure of one stage's LLM call.
// The run does not retry; it transitions to Errored and surfaces the
// cause. Budget exhaustion travels inside the chain so callers can
// still tell "top up the budget" apart from "debug the provider".
type StageError struct {
	Stage Stage
	Agent string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s): %v", e.Stage, e.Agent, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// IsBudgetExceeded reports whether the error chain contains a budget
// refusal rather than a provider failure.
func IsBudgetExceeded(err error) bool {
	return errors.Is(err, llm.ErrBudgetExceeded)
}
