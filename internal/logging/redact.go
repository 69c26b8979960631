package logging

import (
	"log/slog"
	"strings"
)

// piiKeys are attribute keys whose values identify a shopper.
var piiKeys = map[string]bool{
	"email":          true,
	"customer_email": true,
	"recipient":      true,
	"phone":          true,
	"address":        true,
}

// redactPII masks shopper contact details so order logs can be shipped
// without personal data. Emails keep their domain for debugging delivery.
func redactPII(_ []string, attr slog.Attr) slog.Attr {
	if !piiKeys[strings.ToLower(attr.Key)] {
		return attr
	}
	value := attr.Value.Resolve().String()
	if value == "" {
		return attr
	}
	if at := strings.LastIndex(value, "@"); at > 0 {
		return slog.String(attr.Key, "***"+value[at:])
	}
	return slog.String(attr.Key, "***")
}
