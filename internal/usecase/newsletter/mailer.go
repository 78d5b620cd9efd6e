package newsletter

import "context"

// Recipient is one personalization of a message. Substitutions are applied by
// the provider to the subject and body of this recipient's copy only.
type Recipient struct {
	Email         string
	Substitutions map[string]string
}

// Message is a single provider request. With several recipients every one
// receives a separate copy; they never see each other's address.
type Message struct {
	Recipients []Recipient
	Subject    string
	HTML       string
	Text       string
	// Sandbox asks the provider to validate the request without delivering it.
	Sandbox bool
}

// Mailer sends a message through the e-mail provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Addresses wraps plain addresses as recipients without substitutions.
func Addresses(emails ...string) []Recipient {
	out := make([]Recipient, len(emails))
	for i, e := range emails {
		out[i] = Recipient{Email: e}
	}
	return out
}
