package audio

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeWAV(t *testing.T) {
	pcm := make([]byte, 3200)
	data, err := EncodeWAV(pcm, 16000)
	require.NoError(t, err)
	require.Len(t, data, 44+len(pcm))

	sampleRate, channels, bits, dataLen, err := DecodeWAVInfo(data)
	require.NoError(t, err)
	require.Equal(t, 16000, sampleRate)
	require.Equal(t, 1, channels)
	require.Equal(t, 16, bits)
	require.Equal(t, len(pcm), dataLen)
}

func TestEncodeWAVInvalid(t *testing.T) {
	_, err := EncodeWAV(nil, 16000)
	require.Error(t, err)

	_, err = EncodeWAV([]byte{0x01}, 16000)
	require.Error(t, err)

	_, err = EncodeWAV([]byte{0x01, 0x02}, 0)
	require.Error(t, err)
}

func TestDumpWAV(t *testing.T) {
	dir := t.TempDir()

	pcm := make([]byte, 320)
	path, err := DumpWAV(dir, "server_abc123", pcm, 16000)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	require.Regexp(t,
		regexp.MustCompile(`^server_abc123_recording_\d{8}_\d{6}\.wav$`),
		filepath.Base(path),
	)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	sampleRate, channels, _, dataLen, err := DecodeWAVInfo(data)
	require.NoError(t, err)
	require.Equal(t, 16000, sampleRate)
	require.Equal(t, 1, channels)
	require.Equal(t, len(pcm), dataLen)
}

func TestDumpWAVEmpty(t *testing.T) {
	dir := t.TempDir()

	path, err := DumpWAV(dir, "server_abc123", nil, 16000)
	require.NoError(t, err)
	require.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
