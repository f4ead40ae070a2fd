package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "formatted with country code", in: "+91 98765-43210", want: "9876543210"},
		{name: "bare country code", in: "919812345670", want: "9812345670"},
		{name: "trunk prefix", in: "09812345670", want: "9812345670"},
		{name: "plain ten digits", in: "8123456780", want: "8123456780"},
		{name: "spaces and dashes", in: "98 123-456 70", want: "9812345670"},
		{name: "too short", in: "98765", wantErr: true},
		{name: "too long", in: "981234567012", wantErr: true},
		{name: "invalid leading digit", in: "5555555555", wantErr: true},
		{name: "repeated digits", in: "9999999999", wantErr: true},
		{name: "ascending sequence", in: "1234567890", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "letters only", in: "call me", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
