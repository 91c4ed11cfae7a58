package opayo

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// signedFields is the exact concatenation order the gateway signs. VendorName
// and SecurityKey are not notification fields: the vendor id comes from local
// configuration and the security key from the audit record stored at
// registration time. The order is fixed by the protocol; do not reorder.
var signedFields = []string{
	"VPSTxId", "VendorTxCode", "Status", "TxAuthNo", "VendorName", "AVSCV2",
	"SecurityKey", "AddressResult", "PostCodeResult", "CV2Result", "GiftAid",
	"3DSecureStatus", "CAVV", "AddressStatus", "PayerStatus", "CardType",
	"Last4Digits", "DeclineCode", "ExpiryDate", "FraudResponse", "BankAuthCode",
	"ACSTransID", "DSTransID", "SchemeTraceID",
}

// SignatureBase builds the string the MD5 signature is computed over.
// Missing notification fields contribute an empty string.
func SignatureBase(n Notification, vendor, securityKey string) string {
	var b strings.Builder
	for _, field := range signedFields {
		switch field {
		case "VendorName":
			b.WriteString(vendor)
		case "SecurityKey":
			b.WriteString(securityKey)
		default:
			b.WriteString(n.Get(field))
		}
	}
	return b.String()
}

// Sign computes the lowercase hex MD5 the gateway uses. MD5 is mandated by
// the Opayo Server protocol, not a choice this service gets to make.
func Sign(n Notification, vendor, securityKey string) string {
	sum := md5.Sum([]byte(SignatureBase(n, vendor, securityKey)))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks the notification's own VPSSignature against the
// locally computed digest, case-insensitively. A false result means the
// payload was tampered with in transit, or the stored security key does not
// belong to this transaction.
func VerifySignature(n Notification, vendor, securityKey string) bool {
	sig := n.Signature()
	if sig == "" {
		return false
	}
	return strings.EqualFold(Sign(n, vendor, securityKey), sig)
}
