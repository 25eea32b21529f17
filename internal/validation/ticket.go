package validation

// CreateTicketParams is the raw create-ticket payload.
type CreateTicketParams struct {
	Subject string `json:"subject" validate:"min=1"`
	Content string `json:"content" validate:"min=1"`
}

// CreateTicketInput is a validated create-ticket request.
type CreateTicketInput struct {
	Subject string
	Content string
}

// UpdateTicketParams carries the optional completion and cancellation fields.
// Whether a field is mandatory depends on the transition, which the caller decides.
type UpdateTicketParams struct {
	Resolution   *string `json:"resolution" validate:"omitnil,min=1"`
	CancelReason *string `json:"cancelReason" validate:"omitnil,min=1"`
}

// UpdateTicketInput is a validated update request.
type UpdateTicketInput struct {
	Resolution   *string
	CancelReason *string
}

// CreateTicket validates ticket creation input.
func (v *Validator) CreateTicket(p CreateTicketParams) (CreateTicketInput, error) {
	if err := v.check(p); err != nil {
		return CreateTicketInput{}, err
	}
	return CreateTicketInput{Subject: p.Subject, Content: p.Content}, nil
}

// UpdateTicket validates completion/cancellation input.
func (v *Validator) UpdateTicket(p UpdateTicketParams) (UpdateTicketInput, error) {
	if err := v.check(p); err != nil {
		return UpdateTicketInput{}, err
	}
	return UpdateTicketInput{Resolution: p.Resolution, CancelReason: p.CancelReason}, nil
}

// RequireResolution fails unless a completion resolution was supplied.
func (in UpdateTicketInput) RequireResolution() (string, error) {
	if in.Resolution == nil || *in.Resolution == "" {
		return "", required("resolution")
	}
	return *in.Resolution, nil
}

// RequireCancelReason fails unless a cancellation reason was supplied.
func (in UpdateTicketInput) RequireCancelReason() (string, error) {
	if in.CancelReason == nil || *in.CancelReason == "" {
		return "", required("cancelReason")
	}
	return *in.CancelReason, nil
}
