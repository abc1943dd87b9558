package api

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	ClinicID  string `json:"clinic_id"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse is a successful /chat reply. Every field is optional.
type ChatResponse struct {
	Reply         string `json:"reply,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	BookingURL    string `json:"booking_url,omitempty"`
	Handoff       bool   `json:"handoff,omitempty"`
	HandoffReason string `json:"handoff_reason,omitempty"`
}

// LeadRequest is the body of POST /leads. Empty optional fields are
// omitted from the wire.
type LeadRequest struct {
	ClinicID  string `json:"clinic_id"`
	SessionID string `json:"session_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Message   string `json:"message,omitempty"`
}

// LeadResponse is the optional body of a successful /leads reply.
type LeadResponse struct {
	OK bool `json:"ok"`
}
