package email

// PreviewData holds sample values for every template, keyed by template name.
// Render(name, PreviewData[name]) produces a local preview.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"UserName": "Jane",
	},
	TemplatePaymentFailed: {
		"Amount":     "49.00 USD",
		"InvoiceURL": "https://invoice.stripe.com/i/acct_test/inv_test",
	},
}
