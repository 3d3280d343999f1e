package shortlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want string
	}{
		{"zero is fully padded", 0, "000"},
		{"single digit", 7, "007"},
		{"last single symbol", 35, "00z"},
		{"base rollover", 36, "010"},
		{"two symbols", 71, "01z"},
		{"max three symbols", 36*36*36 - 1, "zzz"},
		{"grows past minimum width", 36 * 36 * 36, "1000"},
		{"large id", 123456789, "21i3v9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.n))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    uint64
		wantErr bool
	}{
		{"padded zero", "000", 0, false},
		{"plain digits", "010", 36, false},
		{"letters", "00z", 35, false},
		{"no padding required", "1000", 36 * 36 * 36, false},
		{"empty string", "", 0, true},
		{"uppercase rejected", "00Z", 0, true},
		{"punctuation rejected", "0-1", 0, true},
		{"unicode rejected", "0ф1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	ids := []uint64{0, 1, 2, 35, 36, 37, 1295, 1296, 46655, 46656, 1 << 32, 987654321}
	for _, n := range ids {
		decoded, err := Decode(Encode(n))
		require.NoError(t, err)
		assert.Equal(t, n, decoded, "round trip broke for %d", n)
	}
}

func TestRoundTripSequential(t *testing.T) {
	// Recipe IDs are assigned sequentially from 1, so sweep the low range.
	for n := uint64(1); n < 50000; n++ {
		decoded, err := Decode(Encode(n))
		require.NoError(t, err)
		require.Equal(t, n, decoded)
	}
}
