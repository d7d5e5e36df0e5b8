package i18n

// englishMessages holds all English service messages.
var englishMessages = map[string]string{
	"error.completion": "We are sorry, but we cannot generate an answer right now. Please try again in a moment.",

	"error.question.empty": "Please enter a question.",
	"error.tenant.empty":   "No shop ID was provided.",

	"escalation.subject": "A question needs staff follow-up",
}
