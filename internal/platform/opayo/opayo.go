package opayo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/merchkit/paygate/pkg/config"
)

const (
	// ProcessorName keys audit records and payment events.
	ProcessorName = "opayo"

	protocolVersion = "4.00"
	txTypePayment   = "PAYMENT"

	testEndpoint = "https://test.sagepay.com/gateway/service/vspserver-register.vsp"
	liveEndpoint = "https://live.sagepay.com/gateway/service/vspserver-register.vsp"
)

type ClientOptions struct {
	Vendor string
	Mode   config.GatewayMode
	// Endpoint overrides the mode-selected registration URL. Used in tests.
	Endpoint   string
	HTTPClient *http.Client
}

// Client talks the Opayo Server registration protocol. Test vs live mode is
// purely an endpoint switch.
type Client struct {
	vendor   string
	endpoint string
	http     *http.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Vendor == "" {
		return nil, errors.New("opayo: vendor is required")
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		switch opts.Mode {
		case config.GatewayModeLive:
			endpoint = liveEndpoint
		case config.GatewayModeTest:
			endpoint = testEndpoint
		default:
			return nil, fmt.Errorf("opayo: unknown mode %q", opts.Mode)
		}
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{vendor: opts.Vendor, endpoint: endpoint, http: hc}, nil
}

func (c *Client) Vendor() string { return c.vendor }

// Register submits a hosted-payment-page registration. Transport failures
// and non-2xx statuses return an error with no reply; a reply is returned
// even when its Status signals rejection, so the caller can audit it.
func (c *Client) Register(ctx context.Context, reg *RegistrationRequest) (*RegistrationReply, error) {
	form := reg.Values(c.vendor)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("opayo: build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opayo: registration call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("opayo: read registration reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("opayo: registration endpoint returned status %d", resp.StatusCode)
	}

	reply := ParseReply(string(body))
	if reply.Status == "" {
		return nil, errors.New("opayo: registration reply missing Status")
	}
	return reply, nil
}
