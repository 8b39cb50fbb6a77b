package email

// SendWelcomeEmail greets a user who just signed up.
func (c *Client) SendWelcomeEmail(to, name string) error {
	data := map[string]string{
		"UserName": name,
	}

	return c.SendEmail(to, "Welcome to Guardian", TemplateWelcome, data)
}

// PaymentFailed describes an invoice whose payment did not go through.
type PaymentFailed struct {
	Amount     string
	InvoiceURL string
}

// SendPaymentFailedEmail asks the billing contact to update their payment method.
func (c *Client) SendPaymentFailedEmail(to string, p PaymentFailed) error {
	data := map[string]string{
		"Amount":     p.Amount,
		"InvoiceURL": p.InvoiceURL,
	}

	return c.SendEmail(to, "Your Guardian payment failed", TemplatePaymentFailed, data)
}
