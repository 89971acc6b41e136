package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// ErrEdgeTTSNotFound is returned when the edge-tts binary is not found.
var ErrEdgeTTSNotFound = errors.New("edge-tts binary not found")

// EdgeCLIConfig holds configuration for the edge-tts CLI engine.
type EdgeCLIConfig struct {
	// BinaryPath is the path to the edge-tts executable.
	BinaryPath string
	// DefaultVoice is the voice used when a request does not name one.
	DefaultVoice string
}

// EdgeCLIEngine implements the Engine interface by shelling out to the
// edge-tts command line tool.
type EdgeCLIEngine struct {
	config EdgeCLIConfig
	logger *slog.Logger
}

// NewEdgeCLIEngine creates a new edge-tts CLI engine.
func NewEdgeCLIEngine(cfg EdgeCLIConfig, logger *slog.Logger) (*EdgeCLIEngine, error) {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "edge-tts"
	}

	// Verify edge-tts binary exists
	if _, err := exec.LookPath(cfg.BinaryPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEdgeTTSNotFound, cfg.BinaryPath)
	}

	return &EdgeCLIEngine{
		config: cfg,
		logger: logger,
	}, nil
}

// Name returns the engine identifier.
func (e *EdgeCLIEngine) Name() string {
	return "edge-cli"
}

// Synthesize converts text to audio by running edge-tts. The tool writes
// MP3 to a temp file which is read back and discarded; a cancelled ctx
// kills the process and no partial output escapes.
func (e *EdgeCLIEngine) Synthesize(ctx context.Context, req SynthesizeRequest) (*AudioResult, error) {
	if req.Text == "" {
		return nil, ErrEmptyText
	}

	voice := req.Voice
	if voice == "" {
		voice = e.config.DefaultVoice
	}

	tempFile, err := os.CreateTemp("", "ttserve-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp output file: %w", err)
	}
	tempPath := tempFile.Name()
	tempFile.Close()

	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			e.logger.Warn("failed to remove temp file", "path", tempPath, "error", removeErr)
		}
	}()

	args := []string{
		"--voice", voice,
		"--text", req.Text,
		"--write-media", tempPath,
	}

	e.logger.Debug("running edge-tts",
		"binary", e.config.BinaryPath,
		"voice", voice,
		"text_length", len(req.Text),
	)

	// Create command with context for cancellation
	cmd := exec.CommandContext(ctx, e.config.BinaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Error("edge-tts failed",
			"error", err,
			"stderr", stderr.String(),
		)
		return nil, fmt.Errorf("%w: %s", ErrSynthesisFailed, stderr.String())
	}

	audio, err := os.ReadFile(tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio output: %w", err)
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: no audio output", ErrSynthesisFailed)
	}

	e.logger.Debug("edge-tts synthesis complete",
		"output_bytes", len(audio),
	)

	return &AudioResult{
		Data:   audio,
		Format: "mp3",
	}, nil
}
