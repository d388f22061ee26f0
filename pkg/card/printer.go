package card

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oblivilight/oblivilight/internal/httpc"
	"github.com/oblivilight/oblivilight/internal/log"
)

// Printer submits rendered cards to the thermal print gateway.
type Printer struct {
	gatewayURL string
	client     *http.Client
}

// NewPrinter creates a printer client for the given gateway URL.
// An empty URL disables printing.
func NewPrinter(gatewayURL string) *Printer {
	return &Printer{
		gatewayURL: gatewayURL,
		client:     httpc.NewClient(30 * time.Second),
	}
}

// Enabled reports whether a print gateway is configured.
func (p *Printer) Enabled() bool {
	return p.gatewayURL != ""
}

// Print sends the PNG to the gateway. Printing is best effort; a
// failed print must never fail the session that produced the card.
func (p *Printer) Print(ctx context.Context, pngData []byte) error {
	if !p.Enabled() {
		log.Debug("print gateway not configured, skipping print")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.gatewayURL+"/print", bytes.NewReader(pngData))
	if err != nil {
		return fmt.Errorf("create print request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("print request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("print gateway returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
