package models

// ErrorResponse is the JSON body of every error reply. Error is machine
// readable; Message carries extra detail for unexpected failures only.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ShortenRequest is the body of POST /shorten.
type ShortenRequest struct {
	Mode string       `json:"mode" binding:"required,oneof=play edit story"`
	Data *StateRecord `json:"data" binding:"required"`
}

// ShortenResponse is returned for a created short link.
type ShortenResponse struct {
	ShortCode string `json:"shortCode"`
	URL       string `json:"url"`
}

// ExpandResponse is returned by GET /<shortCode>.
type ExpandResponse struct {
	Mode Mode        `json:"mode"`
	Data StateRecord `json:"data"`
}
