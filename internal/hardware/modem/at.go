package modem

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/logger"
)

// ctrlZ terminates the SMS body in text mode.
const ctrlZ = 0x1A

// Pauses are the fixed delays after each handshake step, giving the modem time to process.
type Pauses struct {
	Attention time.Duration
	TextMode  time.Duration
	Recipient time.Duration
	Submit    time.Duration
}

// DefaultPauses returns the delays a SIM7600 needs: 1s, 1s, 1s and 3s for the network.
func DefaultPauses() Pauses {
	return Pauses{
		Attention: 1 * time.Second,
		TextMode:  1 * time.Second,
		Recipient: 1 * time.Second,
		Submit:    3 * time.Second,
	}
}

// ATModem drives a modem in SMS text mode over a write channel.
type ATModem struct {
	port   io.WriteCloser
	pauses Pauses
}

// step is one write of the send handshake.
type step struct {
	name    string
	payload []byte
	pause   time.Duration
}

// NewATModem wraps an open modem channel.
func NewATModem(port io.WriteCloser, pauses Pauses) *ATModem {
	return &ATModem{
		port:   port,
		pauses: pauses,
	}
}

// Send runs the four-step handshake. It stops at the first failed write; nothing is retried.
// Once the body is submitted the send has succeeded, so only the pauses
// between writes are abortable.
func (m *ATModem) Send(ctx context.Context, msg hive.AlertMessage) error {
	steps := m.steps(msg)

	for i, st := range steps {
		if _, err := m.port.Write(st.payload); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}

		logger.DebugKV(ctx, "AT step written", "step", st.name)

		err := wait(ctx, st.pause)

		switch {
		case i == len(steps)-1:
			if err != nil {
				logger.DebugKV(ctx, "Submit pause cut short", "error", err)
			}
		case err != nil:
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}

	return nil
}

// Close releases the serial channel.
func (m *ATModem) Close() error {
	return m.port.Close()
}

// steps builds the handshake: liveness, text mode, recipient, body + Ctrl-Z.
func (m *ATModem) steps(msg hive.AlertMessage) []step {
	body := make([]byte, 0, len(msg.Body)+1)
	body = append(body, msg.Body...)
	body = append(body, ctrlZ)

	return []step{
		{name: "attention", payload: []byte("AT\r"), pause: m.pauses.Attention},
		{name: "text mode", payload: []byte("AT+CMGF=1\r"), pause: m.pauses.TextMode},
		{name: "recipient", payload: fmt.Appendf(nil, "AT+CMGS=\"%s\"\r", msg.Destination), pause: m.pauses.Recipient},
		{name: "submit", payload: body, pause: m.pauses.Submit},
	}
}
