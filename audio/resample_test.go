package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResampleSameRate(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	out, err := Resample(data, 16000, 16000)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestResampleDownsample(t *testing.T) {
	// one second of 48 kHz silence becomes one second of 16 kHz
	data := make([]byte, 48000*2)
	out, err := Resample(data, 48000, 16000)
	require.NoError(t, err)
	require.Len(t, out, 16000*2)
}

func TestResampleUpsample(t *testing.T) {
	data := make([]byte, 8000*2)
	out, err := Resample(data, 8000, 16000)
	require.NoError(t, err)
	require.Len(t, out, 16000*2)
}

func TestResampleOddInput(t *testing.T) {
	_, err := Resample([]byte{0x01}, 16000, 8000)
	require.Error(t, err)
}
