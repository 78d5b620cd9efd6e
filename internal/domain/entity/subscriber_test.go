package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"simple address", "reader@example.com", false},
		{"subdomain", "reader@mail.example.co.uk", false},
		{"plus tag", "reader+news@example.com", false},
		{"empty", "", true},
		{"missing at", "reader.example.com", true},
		{"missing dot in domain", "reader@example", true},
		{"whitespace inside", "rea der@example.com", true},
		{"too long", strings.Repeat("a", 250) + "@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "reader@example.com", NormalizeEmail("  Reader@Example.COM "))
}

func TestSubscriberStatus_IsValid(t *testing.T) {
	assert.True(t, SubscriberStatusActive.IsValid())
	assert.True(t, SubscriberStatusUnsubscribed.IsValid())
	assert.False(t, SubscriberStatus("").IsValid())
	assert.False(t, SubscriberStatus("ACTIVE").IsValid())
}
