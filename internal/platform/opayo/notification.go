package opayo

import "net/url"

// Notification is the untrusted key/value payload of a server-to-server
// gateway notification. Nothing in it may be trusted until the signature
// check in VerifySignature passes.
type Notification map[string]string

// NotificationFromForm flattens posted form values, keeping the first value
// per key as the gateway sends exactly one.
func NotificationFromForm(form url.Values) Notification {
	n := make(Notification, len(form))
	for key := range form {
		n[key] = form.Get(key)
	}
	return n
}

// Get returns the field value, or empty string when absent.
func (n Notification) Get(key string) string { return n[key] }

func (n Notification) Status() string        { return n.Get("Status") }
func (n Notification) TransactionID() string { return n.Get("VPSTxId") }
func (n Notification) VendorTxCode() string  { return n.Get("VendorTxCode") }
func (n Notification) Signature() string     { return n.Get("VPSSignature") }
func (n Notification) CardType() string      { return n.Get("CardType") }
func (n Notification) Last4Digits() string   { return n.Get("Last4Digits") }
