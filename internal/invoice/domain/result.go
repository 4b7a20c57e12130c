package domain

// Outcome discriminates the Result of an invoice action.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeValidationFailure  Outcome = "validation_failure"
	OutcomePersistenceFailure Outcome = "persistence_failure"
)

// Messages reported to the form.
const (
	MessageMissingCustomer = "Please select a customer."
	MessageInvalidAmount   = "Please enter an amount greater than $0."
	MessageAmountTooLarge  = "Please enter a smaller amount."
	MessageInvalidStatus   = "Please select an invoice status."

	MessageCreateMissingFields = "Missing Fields. Failed to Create Invoice."
	MessageUpdateMissingFields = "Missing Fields. Failed to Update Invoice."

	MessageCreateFailed = "Database Error: Failed to Create Invoice."
	MessageUpdateFailed = "Database Error: Failed to Update Invoice."
	MessageDeleteFailed = "Database Error: Failed to Delete Invoice."

	MessageDeleted = "Deleted Invoice."
)

// Result is the outcome of a single invoice action. On success the caller
// decides whether to navigate away or render Message.
type Result struct {
	Outcome Outcome
	Errors  FieldErrors
	Message string

	// Err is the underlying cause. It is never rendered.
	Err error

	InvoiceID    string
	RowsAffected int64
}

// OK reports whether the action committed.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// State returns the renderable projection of r.
func (r Result) State() State {
	return State{
		Errors:  r.Errors,
		Message: r.Message,
	}
}

// State is what a form is re-rendered with after a failed submission.
type State struct {
	Errors  FieldErrors `json:"errors,omitempty"`
	Message string      `json:"message,omitempty"`
}
