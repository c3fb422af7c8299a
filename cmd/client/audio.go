package main

import (
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"

	"github.com/dan-ince-aai/pipecheetah/audio"
	"github.com/dan-ince-aai/pipecheetah/duplex"
)

const (
	framesPerBuffer = 160

	// capture rate to fall back to when the device cannot open at the
	// wire rate; chunks are resampled down before sending
	fallbackCaptureRate = 48000
)

// audioDevices owns the portaudio streams for the duration of a
// session.
type audioDevices struct {
	input  *portaudio.Stream
	output *portaudio.Stream
}

func (d *audioDevices) Close() {
	_ = d.input.Stop()
	_ = d.output.Stop()
	_ = d.input.Close()
	_ = d.output.Close()
	_ = portaudio.Terminate()
}

// openCapture opens a mono capture stream at rate. The device callback
// converts samples to little-endian bytes, resamples to the wire rate
// when capturing at a different one, and hands off without blocking.
func openCapture(device *portaudio.DeviceInfo, streamer *duplex.Streamer, rate int) (*portaudio.Stream, error) {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(rate),
		FramesPerBuffer: framesPerBuffer,
	}

	captureBuf := make([]byte, framesPerBuffer*2)
	return portaudio.OpenStream(params, func(in []int16) {
		buf := captureBuf
		if need := len(in) * 2; need > len(buf) {
			buf = make([]byte, need)
		}
		for i, s := range in {
			buf[i*2] = byte(s)
			buf[i*2+1] = byte(s >> 8)
		}
		chunk := buf[:len(in)*2]

		if rate != captureSampleRate {
			resampled, err := audio.Resample(chunk, float64(rate), captureSampleRate)
			if err != nil {
				return
			}
			chunk = resampled
		}
		streamer.Capture(chunk)
	})
}

// openAudio starts two mono streams: a 16 kHz capture stream feeding
// the streamer and a 24 kHz playback stream draining the buffer. The
// rates differ, so a single duplex stream cannot serve both.
func openAudio(streamer *duplex.Streamer, playback *audio.Buffer) (*audioDevices, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	inputDevice, err := portaudio.DefaultInputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	slog.Info("input device", slog.String("name", inputDevice.Name))

	outputDevice, err := portaudio.DefaultOutputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	slog.Info("output device", slog.String("name", outputDevice.Name))

	input, err := openCapture(inputDevice, streamer, captureSampleRate)
	if err != nil {
		slog.Warn("capture at wire rate failed, resampling from fallback rate",
			slog.Int("wire_rate", captureSampleRate),
			slog.Int("fallback_rate", fallbackCaptureRate),
			slog.Any("err", err),
		)
		input, err = openCapture(inputDevice, streamer, fallbackCaptureRate)
	}
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open capture stream: %w", err)
	}

	outParams := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   outputDevice,
			Channels: 1,
			Latency:  outputDevice.DefaultLowOutputLatency,
		},
		SampleRate:      playbackSampleRate,
		FramesPerBuffer: framesPerBuffer,
	}

	playBuf := make([]byte, framesPerBuffer*2)
	output, err := portaudio.OpenStream(outParams, func(out []int16) {
		buf := playBuf
		if need := len(out) * 2; need > len(buf) {
			buf = make([]byte, need)
		}
		n := playback.ReadAvailable(buf[:len(out)*2])

		count := n / 2
		for i := 0; i < count; i++ {
			out[i] = int16(buf[i*2]) | int16(buf[i*2+1])<<8
		}
		// silence when the buffer runs dry
		for i := count; i < len(out); i++ {
			out[i] = 0
		}
	})
	if err != nil {
		input.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("open playback stream: %w", err)
	}

	if err := input.Start(); err != nil {
		input.Close()
		output.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start capture stream: %w", err)
	}
	if err := output.Start(); err != nil {
		input.Stop()
		input.Close()
		output.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start playback stream: %w", err)
	}

	return &audioDevices{input: input, output: output}, nil
}
