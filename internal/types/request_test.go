package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoverRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     DiscoverRequest
		wantErr bool
	}{
		{
			name: "single absolute url",
			req:  DiscoverRequest{URLs: []string{"https://example-biz.test"}},
		},
		{
			name: "several urls",
			req:  DiscoverRequest{URLs: []string{"https://a.test/contact", "http://b.test"}},
		},
		{
			name:    "nil urls",
			req:     DiscoverRequest{},
			wantErr: true,
		},
		{
			name:    "empty list",
			req:     DiscoverRequest{URLs: []string{}},
			wantErr: true,
		},
		{
			name:    "blank entry",
			req:     DiscoverRequest{URLs: []string{"https://a.test", ""}},
			wantErr: true,
		},
		{
			name:    "relative url",
			req:     DiscoverRequest{URLs: []string{"/contact"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContactType_Valid(t *testing.T) {
	assert.True(t, ContactEmail.Valid())
	assert.True(t, ContactPhone.Valid())
	assert.True(t, ContactSocial.Valid())
	assert.True(t, ContactMessenger.Valid())
	assert.False(t, ContactType("fax").Valid())
}
