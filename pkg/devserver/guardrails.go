package devserver

import (
	"fmt"
	"strings"
)

// Handoff reasons reported with guardrail replies.
const (
	HandoffEmergency     = "emergency"
	HandoffMedicalAdvice = "medical_advice_request"
	disclaimer           = "This assistant provides general information and does not replace professional medical advice."
)

var emergencyKeywords = []string{
	"bleeding", "choking", "unconscious", "heart attack", "stroke",
	"breathing", "ambulance", "911", "emergency", "severe pain", "trauma",
}

var medicalKeywords = []string{
	"diagnose", "symptom", "treatment", "medicine", "prescription",
	"infection", "swelling", "pain", "hurt", "ache", "disease",
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// IsEmergency reports whether text mentions an emergency sign.
func IsEmergency(text string) bool { return containsAny(text, emergencyKeywords) }

// IsMedicalRequest reports whether text asks about symptoms or treatment.
func IsMedicalRequest(text string) bool { return containsAny(text, medicalKeywords) }

// Guardrail returns a fixed reply and handoff reason when text must not
// reach the assistant. Emergencies take precedence.
func Guardrail(c Clinic, text string) (reply, reason string, ok bool) {
	switch {
	case IsEmergency(text):
		reply = fmt.Sprintf("%s\n\nIf you cannot reach the clinic quickly, seek urgent medical care.\n\n%s",
			c.EmergencyInstructions, disclaimer)
		return reply, HandoffEmergency, true
	case IsMedicalRequest(text):
		reply = fmt.Sprintf("I can't provide medical advice or diagnose symptoms. "+
			"The safest step is to book an appointment so a clinician can assess you.\n\n"+
			"You can book here: %s\nOr contact the clinic: %s / %s\n\n%s",
			c.BookingURL, c.ContactPhone, c.ContactEmail, disclaimer)
		return reply, HandoffMedicalAdvice, true
	}
	return "", "", false
}
