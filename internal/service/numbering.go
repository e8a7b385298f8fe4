package service

import (
	"fmt"
	"time"
)

// Document number prefixes
const (
	EstimateNumberPrefix = "EST"
	InvoiceNumberPrefix  = "INV"
)

// NextDocumentNumber suggests a document number from the current time,
// e.g. EST-493217. It is only a default the user may edit before saving:
// the suffix is the Unix time truncated to six digits, which can collide
// under rapid creation. Uniqueness is enforced per tenant at save time.
func NextDocumentNumber(prefix string) string {
	return fmt.Sprintf("%s-%06d", prefix, time.Now().Unix()%1000000)
}
