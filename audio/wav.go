package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// wavHeader is the canonical 44 byte RIFF/WAVE header for PCM data.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

// EncodeWAV wraps raw little-endian int16 PCM bytes in a mono 16-bit
// WAV container at the given sample rate.
func EncodeWAV(pcm []byte, sampleRate int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("no audio data to encode")
	}
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("pcm length must be even, got %d", len(pcm))
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	const (
		numChannels   = uint16(1)
		bitsPerSample = uint16(16)
	)
	dataSize := uint32(len(pcm))

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   numChannels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8,
		BlockAlign:    numChannels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("write wav header: %w", err)
	}
	buf.Write(pcm)

	return buf.Bytes(), nil
}

// DecodeWAVInfo reads the header of a WAV file and returns sample
// rate, channel count, bits per sample and data length.
func DecodeWAVInfo(data []byte) (sampleRate int, channels int, bits int, dataLen int, err error) {
	if len(data) < 44 {
		return 0, 0, 0, 0, fmt.Errorf("wav data too short: %d bytes", len(data))
	}

	var header wavHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("read wav header: %w", err)
	}
	if string(header.ChunkID[:]) != "RIFF" || string(header.Format[:]) != "WAVE" {
		return 0, 0, 0, 0, fmt.Errorf("not a wav file")
	}
	if header.AudioFormat != 1 {
		return 0, 0, 0, 0, fmt.Errorf("unsupported audio format: %d", header.AudioFormat)
	}

	return int(header.SampleRate), int(header.NumChannels), int(header.BitsPerSample), int(header.Subchunk2Size), nil
}

// DumpWAV persists accumulated session audio as
// <name>_recording_<YYYYMMDD_HHMMSS>.wav under dir. Nothing is written
// when pcm is empty. Returns the path of the created file.
func DumpWAV(dir, name string, pcm []byte, sampleRate int) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}

	data, err := EncodeWAV(pcm, sampleRate)
	if err != nil {
		return "", fmt.Errorf("encode wav: %w", err)
	}

	filename := fmt.Sprintf("%s_recording_%s.wav", name, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}
