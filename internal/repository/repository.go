// Package repository gives the rest of the service typed access to data.
//
// Identity data (users, sessions, organizations, members, invitations, teams,
// subscriptions) lives in the external provider: those repositories forward
// one call each through a provider.Forwarder bound to the inbound request.
// Data this service owns (the billing event ledger) lives in PostgreSQL and is
// reached through pgx.
package repository
