package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrDestinationNotConfigured means the company has no destination
	// database credential mapped; nothing was written.
	ErrDestinationNotConfigured = errors.New("no destination database is configured for this company")

	// ErrDuplicateConnector means a connector of the same type already
	// exists for the external account; nothing was written.
	ErrDuplicateConnector = errors.New("a connector for this account is already registered")

	ErrConnectorNotFound = errors.New("connector not found")
)

// UnreachableError wraps a failure to reach one of the saga's dependencies
// (vault, a store, the destination database, the ingestion API).
type UnreachableError struct {
	Dependency string
	Err        error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s is unreachable: %v", e.Dependency, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// PartialCommitError reports the one state this saga cannot repair on its
// own: the registry store committed, the mapping store did not, and the
// reversing delete of the registry rows failed too. The stores disagree
// until an operator or reconciliation job intervenes.
type PartialCommitError struct {
	ConnectorID    uuid.UUID
	CommittedStore string
	FailedStore    string
	CommitErr      error
	ReversalErr    error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf(
		"partial commit for connector %s: %s committed but %s failed (%v); reversal failed (%v)",
		e.ConnectorID, e.CommittedStore, e.FailedStore, e.CommitErr, e.ReversalErr,
	)
}

// TableLifecycleError reports a destination-table create or drop failure.
// The connector registration it follows stays committed; the operation can
// be retried on its own.
type TableLifecycleError struct {
	Table string
	Op    string
	Err   error
}

func (e *TableLifecycleError) Error() string {
	return fmt.Sprintf("%s table %s: %v", e.Op, e.Table, e.Err)
}

func (e *TableLifecycleError) Unwrap() error {
	return e.Err
}

// IngestTriggerError reports a failed backfill trigger after a successful
// registration. Ingestion can be re-triggered independently.
type IngestTriggerError struct {
	ConnectorID uuid.UUID
	Err         error
}

func (e *IngestTriggerError) Error() string {
	return fmt.Sprintf("trigger ingestion for connector %s: %v", e.ConnectorID, e.Err)
}

func (e *IngestTriggerError) Unwrap() error {
	return e.Err
}

// StepFailure is one failed teardown step.
type StepFailure struct {
	Step string
	Err  error
}

// TeardownReport collects per-step teardown failures. Teardown is
// best-effort: steps keep running after earlier ones fail.
type TeardownReport struct {
	Failures []StepFailure
}

func (r *TeardownReport) add(step string, err error) {
	r.Failures = append(r.Failures, StepFailure{Step: step, Err: err})
}

func (r *TeardownReport) Ok() bool {
	return len(r.Failures) == 0
}

// Err aggregates the step failures, nil when every step succeeded.
func (r *TeardownReport) Err() error {
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, fmt.Errorf("%s: %w", f.Step, f.Err))
	}
	return result.ErrorOrNil()
}
