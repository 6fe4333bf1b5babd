package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// RedirectData is the body of a 303 response.
type RedirectData struct {
	RedirectTo string `json:"redirect_to"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
