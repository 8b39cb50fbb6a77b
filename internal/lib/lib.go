// Package lib holds integrations that do not belong to a single layer:
// background jobs (asynq), transactional e-mail (Resend) and the payment
// provider (Stripe).
package lib
