// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// MailQueueName is the durable queue carrying outbound transactional mail.
const MailQueueName = "mail.outbound"

// MailRequestedEvent is published whenever the service wants an email sent.
// It carries everything a delivery worker needs without querying the
// primary database.
type MailRequestedEvent struct {
	To          string            `json:"to"`
	Subject     string            `json:"subject"`
	Template    string            `json:"template"`
	Context     map[string]string `json:"context"`
	RequestedAt string            `json:"requested_at"`
}
