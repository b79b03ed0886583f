// Cross-platform eSpeak implementation
package tts

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"airadio/internal/radio/audio"
)

// ESpeakNarrator renders speech to a temporary wav file with eSpeak/eSpeak-NG
type ESpeakNarrator struct {
	config Config
	path   string
}

func newESpeakNarrator(config Config) (*ESpeakNarrator, error) {
	espeakPath, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}
	if config.Speed <= 0 {
		config.Speed = 1
	}
	if config.Volume <= 0 {
		config.Volume = 1
	}
	return &ESpeakNarrator{config: config, path: espeakPath}, nil
}

func findESpeakExecutable() (string, error) {
	for _, candidate := range espeakCandidates() {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("eSpeak executable not found in PATH")
}

func (e *ESpeakNarrator) Ready(ctx context.Context) error {
	if err := exec.CommandContext(ctx, e.path, "--version").Run(); err != nil {
		return fmt.Errorf("eSpeak test failed: %w", err)
	}
	return nil
}

func (e *ESpeakNarrator) Synthesize(ctx context.Context, text string, voice Voice) (audio.Resource, error) {
	return renderToWAV(ctx, e.path, func(path string) []string {
		return espeakArgs(e.config, voice, path, text)
	})
}

// espeakArgs builds the command line. eSpeak voices are named by language,
// so the tier is ignored.
func espeakArgs(config Config, voice Voice, wavPath, text string) []string {
	args := []string{}

	if lang := espeakLanguage(voice.LanguageTag); lang != "" {
		args = append(args, "-v", lang)
	}

	// Set speed (words per minute, default is 175)
	speed := int(175 * config.Speed)
	args = append(args, "-s", strconv.Itoa(speed))

	// Set volume (0-200, default is 100)
	volume := int(100 * config.Volume)
	args = append(args, "-a", strconv.Itoa(volume))

	args = append(args, "-w", wavPath, "--", text)
	return args
}

// espeakLanguage turns "es-ES" into the "es" voice eSpeak understands.
func espeakLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || tag == "default" {
		return ""
	}
	if base, _, ok := strings.Cut(tag, "-"); ok {
		return base
	}
	return tag
}

func (e *ESpeakNarrator) Voices(ctx context.Context) ([]string, error) {
	output, err := exec.CommandContext(ctx, e.path, "--voices").Output()
	if err != nil {
		return nil, err
	}

	return parseESpeakVoices(string(output)), nil
}

func parseESpeakVoices(output string) []string {
	lines := strings.Split(output, "\n")
	voices := make([]string, 0)

	for i, line := range lines {
		// Skip header line
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}

		// Pty Language Age/Gender VoiceName File Other Languages
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			voices = append(voices, fields[3])
		}
	}

	return voices
}
