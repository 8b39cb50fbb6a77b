package email

// Template names an embedded template under templates/.
type Template string

const (
	TemplateWelcome       Template = "welcome"
	TemplatePaymentFailed Template = "payment_failed"
)

func (t Template) file() string {
	return string(t) + ".html"
}
