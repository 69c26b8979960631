package orders

const (
	ReasonChangedMind     = "Changed my mind"
	ReasonBetterPrice     = "Found better price elsewhere"
	ReasonMistake         = "Order created by mistake"
	ReasonDeliveryTooLong = "Delivery time too long"
	ReasonNotRequired     = "Product not required anymore"
	ReasonPaymentIssue    = "Payment issue"
	ReasonOther           = "Other reason"
)

// MaxNotesLength caps additional cancellation notes, in characters.
const MaxNotesLength = 1000

var cancellationReasons = []string{
	ReasonChangedMind,
	ReasonBetterPrice,
	ReasonMistake,
	ReasonDeliveryTooLong,
	ReasonNotRequired,
	ReasonPaymentIssue,
	ReasonOther,
}

// CancellationReasons returns the selectable reasons in display order.
func CancellationReasons() []string {
	out := make([]string, len(cancellationReasons))
	copy(out, cancellationReasons)
	return out
}

func IsValidReason(reason string) bool {
	for _, candidate := range cancellationReasons {
		if candidate == reason {
			return true
		}
	}
	return false
}
