// Package service implements the identity service's business operations:
// registration and credential login, federated identity linking, and role
// management. Each operation runs as a single logical unit of work against
// the account store; expected business outcomes are typed results or
// sentinel errors, never panics.
package service
