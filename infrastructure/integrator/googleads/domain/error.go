package adsdomain

// ErrorResponse is the error envelope of the Google Ads REST API.
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails holds the error fields this service inspects.
type ErrorDetails struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
	Details any    `json:"details,omitempty"`
}

// IsUnauthenticated reports whether the error means the access token was
// rejected, which is the only condition the client recovers from.
func (e *ErrorResponse) IsUnauthenticated() bool {
	return e.Error.Code == 401 || e.Error.Status == "UNAUTHENTICATED"
}
