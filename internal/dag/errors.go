package dag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// CycleError reports that no order exists. Remaining lists, in registration
// order, every node whose predecessors could never be satisfied.
type CycleError struct {
	Remaining []model.Identifier
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	ids := make([]string, len(e.Remaining))
	for i, id := range e.Remaining {
		ids[i] = string(id)
	}
	return fmt.Sprintf("cycle detected involving nodes [%s]", strings.Join(ids, ", "))
}

// AsCycleError returns the *CycleError wrapped in err, or nil.
func AsCycleError(err error) *CycleError {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}
