package reconciler

// Ack is the gateway acknowledgement for a notification. Its wire rendering
// is part of the Opayo contract and must be reproduced verbatim: three
// CRLF-joined Key=Value lines, no JSON, even on failure.
type Ack struct {
	Status       string
	StatusDetail string
	RedirectURL  string
}

const (
	AckStatusOK      = "OK"
	AckStatusInvalid = "INVALID"
)

// Body renders the acknowledgement in the gateway's fixed line format.
func (a Ack) Body() string {
	return "Status=" + a.Status + "\r\nStatusDetail=" + a.StatusDetail + "\r\nRedirectURL=" + a.RedirectURL
}
