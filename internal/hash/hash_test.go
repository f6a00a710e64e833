package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		sum  uint64
	}{
		{"empty payload", []byte{}, 0xef46db3751d8e999},
		{"short payload", []byte("test"), 0x4fdcca5ddb678139},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sum, Checksum(tt.data))
		})
	}
}

func TestChecksum_MatchesName(t *testing.T) {
	for _, s := range []string{"", "SRR000001", "ACGTACGTNNNN"} {
		require.Equal(t, Name(s), Checksum([]byte(s)))
	}
}

func TestChecksum_DetectsSingleBaseChange(t *testing.T) {
	a := []byte("ACGTACGTACGT")
	b := []byte("ACGTACGAACGT")
	require.NotEqual(t, Checksum(a), Checksum(b))
}
