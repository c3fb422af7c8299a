package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/dan-ince-aai/pipecheetah"
	"github.com/dan-ince-aai/pipecheetah/audio"
	"github.com/dan-ince-aai/pipecheetah/config"
	"github.com/dan-ince-aai/pipecheetah/frame"
	"github.com/dan-ince-aai/pipecheetah/llm"
	"github.com/dan-ince-aai/pipecheetah/metrics"
	"github.com/dan-ince-aai/pipecheetah/stt"
	"github.com/dan-ince-aai/pipecheetah/transport/ws"
	"github.com/dan-ince-aai/pipecheetah/tts"
)

// runBot composes and drives the conversational pipeline for one
// session: transport input → recorder → STT → LLM → TTS → recorder →
// transport output.
func runBot(ctx context.Context, cfg *config.Config, m *metrics.Metrics, serverName string, sess *ws.Session) {
	logger := slog.Default().With(
		slog.String("component", "bot"),
		slog.String("session_id", sess.ID()),
	)

	listener := &pipecheetah.SessionListener{
		OnClientConnected: func(sessionID string) {
			m.SessionsStarted.Inc()
			m.ActiveSessions.Inc()
			logger.Info("client connected")
		},
		OnClientDisconnected: func(sessionID string) {
			m.SessionsEnded.Inc()
			m.ActiveSessions.Dec()
			logger.Info("client disconnected")
		},
	}
	listener.Connected(sess.ID())
	defer listener.Disconnected(sess.ID())

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			logger.Error("session close failed", slog.Any("err", err))
		}
		m.ControlIgnored.Add(float64(sess.Codec().Ignored()))
	}()

	// No local credential validation: a missing key surfaces as a
	// connection error from the service.
	sttClient, err := stt.Connect(ctx, stt.Config{
		APIKey:     cfg.STT.APIKey,
		BaseURL:    cfg.STT.BaseURL,
		SampleRate: cfg.Audio.InSampleRate,
	})
	if err != nil {
		logger.Error("stt connect failed", slog.Any("err", err))
		// keep the read loop unblocked while the session winds down
		go func() {
			for range sess.Frames() {
			}
		}()
		return
	}
	defer sttClient.Close()

	llmClient := llm.New(llm.Config{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		Model:        cfg.LLM.Model,
		SystemPrompt: cfg.LLM.SystemPrompt,
	})

	ttsClient := tts.New(tts.Config{
		APIKey:     cfg.TTS.APIKey,
		BaseURL:    cfg.TTS.BaseURL,
		ModelID:    cfg.TTS.ModelID,
		VoiceID:    cfg.TTS.VoiceID,
		SampleRate: cfg.Audio.OutSampleRate,
	})

	recorder := audio.NewRecorder(cfg.Audio.InSampleRate)

	// head of the pipeline: apply negotiated audio parameters and
	// count inbound traffic
	setup := &pipecheetah.ProcessorFunc{
		ProcName: "setup",
		Fn: func(ctx context.Context, f frame.Frame, push pipecheetah.PushFunc) error {
			switch f := f.(type) {
			case *frame.Start:
				sess.Codec().Setup(f)
				recorder.SetSampleRate(sess.Codec().SampleRate())
			case *frame.AudioInput:
				m.AudioFramesIn.Inc()
				m.AudioBytesIn.Add(float64(len(f.PCM)))
			}
			return push(ctx, f)
		},
	}

	output := &pipecheetah.ProcessorFunc{
		ProcName: "transport_output",
		Fn: func(ctx context.Context, f frame.Frame, push pipecheetah.PushFunc) error {
			if out, ok := f.(*frame.AudioOutput); ok {
				m.AudioFramesOut.Inc()
				m.AudioBytesOut.Add(float64(len(out.PCM)))
				return sess.WriteFrame(out)
			}
			return push(ctx, f)
		},
	}

	saveRecording := func(pcm []byte, sampleRate int) {
		if !cfg.Recording.Enabled {
			return
		}
		path, err := audio.DumpWAV(cfg.Recording.Dir, serverName, pcm, sampleRate)
		if err != nil {
			// best-effort diagnostic feature, never fatal
			logger.Error("failed to save recording", slog.Any("err", err))
			return
		}
		m.RecordingsSaved.Inc()
		logger.Info("merged audio saved", slog.String("path", path))
	}

	pipeline := pipecheetah.NewPipeline(
		setup,
		pipecheetah.NewRecorderProcessor("recorder_in", recorder),
		stt.NewProcessor(sttClient),
		llm.NewProcessor(llmClient),
		tts.NewProcessor(ttsClient),
		pipecheetah.NewRecorderProcessor("recorder_out", recorder).OnAudioData(saveRecording),
		output,
	)

	task := pipecheetah.NewTask(pipeline, pipecheetah.Params{
		AudioInSampleRate:  cfg.Audio.InSampleRate,
		AudioOutSampleRate: cfg.Audio.OutSampleRate,
	})

	// Transcripts re-enter the pipeline through the task queue. Keep
	// draining after the task ends so the stream can wind down.
	go func() {
		for tr := range sttClient.Transcripts() {
			_ = task.QueueFrame(ctx, &frame.Transcript{Text: tr.Text, Final: tr.Final})
		}
	}()

	// Inbound frames from the transport. Draining must continue after
	// the task ends, otherwise the session read loop blocks.
	go func() {
		for f := range sess.Frames() {
			_ = task.QueueFrame(ctx, f)
		}
		// connection ended, remotely or locally
		task.Cancel()
	}()

	if err := pipecheetah.NewRunner().Run(ctx, task); err != nil {
		logger.Error("pipeline run failed", slog.Any("err", err))
	}
}
