package audio

import (
	"errors"
	"math"
)

// Resample converts 16-bit little-endian mono PCM from srcRate to
// dstRate using naive linear interpolation. Good enough for playback
// on a device that cannot open at the negotiated rate; not meant for
// transcription-quality conversion.
func Resample(data []byte, srcRate, dstRate float64) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, errors.New("input must be 16-bit PCM")
	}
	if srcRate == dstRate {
		return data, nil
	}

	ratio := dstRate / srcRate
	sampleCount := len(data) / 2
	newSampleCount := int(float64(sampleCount) * ratio)

	resampled := make([]byte, newSampleCount*2)

	for i := 0; i < newSampleCount; i++ {
		srcIndex := float64(i) / ratio
		i0 := int(math.Floor(srcIndex))
		i1 := int(math.Min(float64(sampleCount-1), float64(i0+1)))
		frac := srcIndex - float64(i0)

		s0 := int16(data[i0*2]) | int16(data[i0*2+1])<<8
		s1 := int16(data[i1*2]) | int16(data[i1*2+1])<<8
		interpolated := int16(float64(s0)*(1-frac) + float64(s1)*frac)

		resampled[i*2] = byte(interpolated)
		resampled[i*2+1] = byte(interpolated >> 8)
	}

	return resampled, nil
}
