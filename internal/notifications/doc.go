// Package notifications sends job lifecycle push notifications over ntfy.
//
// Delivery is best effort: the engine logs failures and never blocks or
// fails a job on notification errors.
package notifications
