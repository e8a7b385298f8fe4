package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextDocumentNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^EST-\d{6}$`)
	assert.Regexp(t, pattern, NextDocumentNumber(EstimateNumberPrefix))

	pattern = regexp.MustCompile(`^INV-\d{6}$`)
	assert.Regexp(t, pattern, NextDocumentNumber(InvoiceNumberPrefix))
}
