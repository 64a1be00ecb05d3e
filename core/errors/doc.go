// Package errors provides the error taxonomy shared across datarec.
//
// Three classes of failure exist:
//
//   - Invalid configuration (ErrInvalidArgument): an unknown sort or presence
//     direction, a negative tolerance, a report width below the minimum.
//   - Invalid input shape (ErrInvalidInput): duplicate identity keys, a column
//     label that resolves to more than one column, non-numeric tolerance input.
//   - Reconciliation failure (ErrReconciliationFailed): only produced when the
//     caller opted into raising on failed checks.
//
// Typed errors carry context and implement Is so callers match them with
// errors.Is against the sentinels, or extract them with errors.As.
package errors
