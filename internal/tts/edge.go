package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wujunwei928/edge-tts-go/edge_tts"
)

var (
	// ErrSynthesisFailed is returned when TTS synthesis fails.
	ErrSynthesisFailed = errors.New("TTS synthesis failed")
	// ErrEmptyText is returned when there is no text to synthesize.
	ErrEmptyText = errors.New("empty text")
)

// EdgeEngine implements the Engine interface using the Edge TTS web
// service in-process. It produces MP3 audio.
type EdgeEngine struct {
	defaultVoice string
	logger       *slog.Logger
}

// NewEdgeEngine creates a new native Edge TTS engine.
func NewEdgeEngine(defaultVoice string, logger *slog.Logger) *EdgeEngine {
	return &EdgeEngine{
		defaultVoice: defaultVoice,
		logger:       logger,
	}
}

// Name returns the engine identifier.
func (e *EdgeEngine) Name() string {
	return "edge"
}

// Synthesize converts text to audio using Edge TTS.
func (e *EdgeEngine) Synthesize(ctx context.Context, req SynthesizeRequest) (*AudioResult, error) {
	if req.Text == "" {
		return nil, ErrEmptyText
	}

	voice := req.Voice
	if voice == "" {
		voice = e.defaultVoice
	}

	e.logger.Debug("running edge tts",
		"voice", voice,
		"text_length", len(req.Text),
	)

	type result struct {
		data []byte
		err  error
	}

	// edge-tts-go does not take a context, so the call runs in its own
	// goroutine and the result is dropped if ctx expires first.
	resultCh := make(chan result, 1)
	go func() {
		communicate, err := edge_tts.NewCommunicate(req.Text, edge_tts.SetVoice(voice))
		if err != nil {
			resultCh <- result{err: fmt.Errorf("%w: %v", ErrSynthesisFailed, err)}
			return
		}

		data, err := communicate.Stream()
		if err != nil {
			resultCh <- result{err: fmt.Errorf("%w: %v", ErrSynthesisFailed, err)}
			return
		}
		resultCh <- result{data: data}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			e.logger.Error("edge tts failed", "error", res.err)
			return nil, res.err
		}
		if len(res.data) == 0 {
			return nil, fmt.Errorf("%w: no audio output", ErrSynthesisFailed)
		}

		e.logger.Debug("edge tts synthesis complete",
			"output_bytes", len(res.data),
		)

		return &AudioResult{
			Data:   res.data,
			Format: "mp3",
		}, nil
	}
}
