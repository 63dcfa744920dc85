package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for the email
// worker. Template selects the worker-side rendering, e.g. "welcome".
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
