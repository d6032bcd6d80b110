package postgres

import (
	"errors"
	"fmt"

	"ledgerpay/internal/util"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the repositories care about.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// classifyError translates driver-level failures into the application
// error taxonomy. Serialization failures and deadlocks are transient:
// nothing committed, so the caller may retry the whole operation.
func classifyError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", util.ErrDuplicateEmail, pqErr.Constraint)
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%w: %s", util.ErrContention, pqErr.Code.Name())
	}
	return err
}
