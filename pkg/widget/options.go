package widget

import (
	"errors"
	"strings"
	"time"

	"github.com/mattsolo1/grove-widget/pkg/api"
)

// Defaults applied by New when the host leaves a field blank.
const (
	DefaultAPIURL      = "http://localhost:8000"
	DefaultButtonLabel = "Chat with us"
	DefaultTitle       = "Dental Assistant"
)

// ErrMissingClinicID is returned by New when no clinic id was given.
var ErrMissingClinicID = errors.New("clinic id is required")

// Options configure a widget instance.
type Options struct {
	// APIURL is the base URL of the remote chat service.
	APIURL string
	// ClinicID identifies the clinic on every request. Required.
	ClinicID    string
	ButtonLabel string
	Title       string
	// Theme is an accent colour such as "#0ea5e9".
	Theme string
	// SessionID seeds the session; empty means the service assigns one.
	SessionID string
	// Timeout bounds each remote request. Zero selects api.DefaultTimeout.
	Timeout time.Duration
	// LeadCloseDelay overrides how long the lead confirmation stays up.
	LeadCloseDelay time.Duration
}

// withDefaults returns a copy with blank fields filled in.
func (o Options) withDefaults() Options {
	o.APIURL = strings.TrimSpace(o.APIURL)
	o.ClinicID = strings.TrimSpace(o.ClinicID)
	if o.APIURL == "" {
		o.APIURL = DefaultAPIURL
	}
	if o.ButtonLabel == "" {
		o.ButtonLabel = DefaultButtonLabel
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Timeout <= 0 {
		o.Timeout = api.DefaultTimeout
	}
	return o
}

// Validate reports whether the options can start a widget.
func (o Options) Validate() error {
	if strings.TrimSpace(o.ClinicID) == "" {
		return ErrMissingClinicID
	}
	return nil
}
