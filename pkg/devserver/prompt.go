package devserver

import (
	"fmt"
	"sort"
	"strings"
)

const baseSystemPrompt = `You are a dental clinic information assistant.

You must:
- Provide general, non-diagnostic information only
- Answer using the clinic's approved information
- Never provide medical advice, diagnoses, or treatment recommendations
- If asked about symptoms/pain/what to do medically: advise booking an appointment
- If emergency signs are mentioned: give emergency instructions and recommend urgent care

Language:
- Respond in the same language as the user.

Safety:
- Never invent prices, services, insurance coverage, or clinic policies.
- If unsure, say you don't have that information and suggest contacting the clinic.

Always end with:
"` + disclaimer + `"`

// SystemPrompt builds the assistant instructions for clinic.
func SystemPrompt(c Clinic) string {
	prices := make([]string, 0, len(c.PriceRanges))
	for k, v := range c.PriceRanges {
		prices = append(prices, k+": "+v)
	}
	sort.Strings(prices)

	var b strings.Builder
	b.WriteString(baseSystemPrompt)
	b.WriteString("\n\nCLINIC INFO (source of truth):\n")
	fmt.Fprintf(&b, "- Clinic name: %s\n", c.Name)
	fmt.Fprintf(&b, "- Location: %s\n", c.Location)
	fmt.Fprintf(&b, "- Opening hours: %s\n", c.OpeningHours)
	fmt.Fprintf(&b, "- Services: %s\n", strings.Join(c.Services, ", "))
	fmt.Fprintf(&b, "- Insurance: %s\n", strings.Join(c.Insurance, ", "))
	fmt.Fprintf(&b, "- Price ranges: %s\n", strings.Join(prices, "; "))
	fmt.Fprintf(&b, "- Languages: %s\n", strings.Join(c.Languages, ", "))
	fmt.Fprintf(&b, "- Booking URL: %s\n", c.BookingURL)
	fmt.Fprintf(&b, "- Emergency instructions: %s\n", c.EmergencyInstructions)
	fmt.Fprintf(&b, "- Phone: %s\n", c.ContactPhone)
	fmt.Fprintf(&b, "- Email: %s", c.ContactEmail)
	return b.String()
}
