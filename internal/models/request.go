package models

type SubmitRequest struct {
	// PaymentReference is the gateway reference of a successful payment, if
	// the customer paid before submitting.
	PaymentReference string `json:"payment_reference,omitempty" example:"T123456789"`
}

type TransitionRequest struct {
	// Note is appended to admin_notes together with the new status.
	Note string `json:"note,omitempty" validate:"max=300"`
}

// PaymentWebhookEvent is the callback body posted by the payment gateway
// integration once a charge settles.
type PaymentWebhookEvent struct {
	Event     string `json:"event"` // "charge.success" or "charge.closed"
	Reference string `json:"reference"`
	DraftID   string `json:"draft_id"`
	UserID    string `json:"user_id"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	// SetupRequired is set when the backend collection is missing, which
	// needs operator action rather than a retry.
	SetupRequired bool `json:"setup_required,omitempty"`
}
