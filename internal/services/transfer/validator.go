package transfer

// validateRequest checks structural and business preconditions, in order,
// short-circuiting on the first failure. It has no side effects and never
// touches storage.
func validateRequest(req Request) error {
	if req.SenderAccountID == 0 || req.ReceiverAccountID == 0 {
		return ErrMissingField
	}
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if req.SenderAccountID == req.ReceiverAccountID {
		return ErrSelfTransfer
	}
	return nil
}
