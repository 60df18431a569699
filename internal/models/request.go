package models

type UpdatePriceRequest struct {
	// Precio is the new amount for the tier. Must be >= 0.
	// Pointer so that a missing field can be told apart from 0.
	Precio *float64 `json:"precio" example:"100.00"`
}

type DeleteAllRequest struct {
	// Password must match the configured shared secret exactly.
	Password string `json:"password"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
