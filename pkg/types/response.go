package types

// SuccessEnvelope is the body of every 2xx response. Fields are flattened
// next to the success flag.
type SuccessEnvelope map[string]any

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// NewSuccess copies fields into an envelope with success set.
func NewSuccess(fields map[string]any) SuccessEnvelope {
	env := make(SuccessEnvelope, len(fields)+1)
	for k, v := range fields {
		env[k] = v
	}
	env["success"] = true
	return env
}
