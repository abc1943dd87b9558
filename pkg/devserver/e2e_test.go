package devserver_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mattsolo1/grove-widget/pkg/chat"
	"github.com/mattsolo1/grove-widget/pkg/devserver"
	"github.com/mattsolo1/grove-widget/pkg/lead"
	"github.com/mattsolo1/grove-widget/pkg/transcript"
	"github.com/mattsolo1/grove-widget/pkg/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSurface struct{ opened []string }

func (s *nopSurface) ScrollToLatest() {}
func (s *nopSurface) ClearInput()     {}
func (s *nopSurface) FocusInput()     {}
func (s *nopSurface) OpenURL(url string) error {
	s.opened = append(s.opened, url)
	return nil
}

func TestWidgetAgainstDevServer(t *testing.T) {
	s := devserver.New(devserver.Config{}, nil, nil)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	surface := &nopSurface{}
	w, err := widget.New(widget.Options{APIURL: srv.URL, ClinicID: devserver.DemoClinicID, Timeout: 5 * time.Second},
		surface, widget.WithLeadOptions(lead.WithScheduler(func(time.Duration, func()) {})))
	require.NoError(t, err)

	res, err := w.Send(context.Background(), "Do you do whitening?")
	require.NoError(t, err)
	require.Equal(t, chat.OutcomeReplied, res.Outcome)

	sessionID := w.Session().SessionID()
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, devserver.DemoClinic().BookingURL, w.Session().BookingURL())

	bot := w.Transcript().LastBot()
	require.NoError(t, w.ClickAction(bot, transcript.ActionBookAppointment))
	assert.Equal(t, []string{devserver.DemoClinic().BookingURL}, surface.opened)

	// a second send keeps the assigned session
	_, err = w.Send(context.Background(), "and cleaning?")
	require.NoError(t, err)
	assert.Equal(t, sessionID, w.Session().SessionID())

	require.NoError(t, w.ClickAction(bot, transcript.ActionRequestCallback))
	lr, err := w.SubmitLead(context.Background(), lead.Fields{Name: "Ann", Phone: "555-0100"})
	require.NoError(t, err)
	assert.True(t, lr.OK)

	leads := s.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, sessionID, leads[0].SessionID)
	assert.Equal(t, "Ann", leads[0].Name)
}

func TestWidgetUnknownClinic(t *testing.T) {
	srv := httptest.NewServer(devserver.New(devserver.Config{}, nil, nil).Router())
	defer srv.Close()

	w, err := widget.New(widget.Options{APIURL: srv.URL, ClinicID: "nope"}, &nopSurface{})
	require.NoError(t, err)

	res, err := w.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, chat.OutcomeHTTPError, res.Outcome)
	assert.Equal(t, "Error 404: Clinic not found", res.BotText)
	assert.Empty(t, w.Session().SessionID())
}
