package opayo

import "strings"

const (
	StatusOK         = "OK"
	StatusOKRepeated = "OK REPEATED"
	StatusAbort      = "ABORT"
	StatusRejected   = "REJECTED"
)

// RegistrationReply is the parsed registration response. Known fields get
// named accessors; everything else lands in Extra so new gateway fields
// survive a round trip into the audit log.
type RegistrationReply struct {
	Status       string
	StatusDetail string
	VPSTxID      string
	SecurityKey  string
	NextURL      string
	Extra        map[string]string
}

// Accepted reports whether the gateway accepted the registration.
func (r *RegistrationReply) Accepted() bool {
	return r.Status == StatusOK || r.Status == StatusOKRepeated
}

// Fields flattens the reply back into the raw key/value form, as stored in
// the audit log.
func (r *RegistrationReply) Fields() map[string]string {
	out := make(map[string]string, len(r.Extra)+5)
	for k, v := range r.Extra {
		out[k] = v
	}
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("Status", r.Status)
	set("StatusDetail", r.StatusDetail)
	set("VPSTxId", r.VPSTxID)
	set("SecurityKey", r.SecurityKey)
	set("NextURL", r.NextURL)
	return out
}

// ParseReply decodes the newline-separated Key=Value reply body. The first
// '=' splits key from value; values may contain further '=' characters.
func ParseReply(body string) *RegistrationReply {
	reply := &RegistrationReply{Extra: map[string]string{}}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "Status":
			reply.Status = value
		case "StatusDetail":
			reply.StatusDetail = value
		case "VPSTxId":
			reply.VPSTxID = value
		case "SecurityKey":
			reply.SecurityKey = value
		case "NextURL":
			reply.NextURL = value
		default:
			reply.Extra[key] = value
		}
	}
	return reply
}
