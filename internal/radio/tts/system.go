package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"airadio/internal/radio/audio"

	"github.com/sirupsen/logrus"
)

// AVFoundationNarrator renders speech with the macOS 'say' command
type AVFoundationNarrator struct {
	config Config
}

func newAVFoundationNarrator(config Config) (*AVFoundationNarrator, error) {
	if platformEngine() != EngineTypeAVFoundation {
		return nil, fmt.Errorf("AVFoundation engine only supports macOS")
	}
	if config.Speed <= 0 {
		config.Speed = 1
	}
	if config.SampleRate <= 0 {
		config.SampleRate = 22050
	}
	return &AVFoundationNarrator{config: config}, nil
}

func (av *AVFoundationNarrator) Ready(ctx context.Context) error {
	if _, err := exec.LookPath("say"); err != nil {
		return fmt.Errorf("say not found: %w", err)
	}
	return nil
}

func (av *AVFoundationNarrator) Synthesize(ctx context.Context, text string, voice Voice) (audio.Resource, error) {
	return renderToWAV(ctx, "say", func(path string) []string {
		return sayArgs(av.config, path, text)
	})
}

// sayArgs builds the command line. 'say' picks a voice for the system
// language, so the requested language only applies through a named voice.
func sayArgs(config Config, wavPath, text string) []string {
	// Set rate (words per minute, default is ~175)
	args := []string{"-r", fmt.Sprintf("%.0f", 175*config.Speed)}
	args = append(args,
		"-o", wavPath,
		"--file-format=WAVE",
		fmt.Sprintf("--data-format=LEI16@%d", config.SampleRate),
		"--", text)
	return args
}

func (av *AVFoundationNarrator) Voices(ctx context.Context) ([]string, error) {
	output, err := exec.CommandContext(ctx, "say", "-v", "?").Output()
	if err != nil {
		return nil, err
	}
	return parseSayVoices(string(output)), nil
}

// parseSayVoices reads lines of the form "VoiceName    language    # description".
func parseSayVoices(output string) []string {
	var voices []string
	for _, line := range strings.Split(output, "\n") {
		head, _, _ := strings.Cut(line, "#")
		fields := strings.Fields(head)
		if len(fields) < 2 {
			continue
		}
		// Names may contain spaces; the language code is always last.
		voices = append(voices, strings.Join(fields[:len(fields)-1], " "))
	}
	return voices
}

// SAPINarrator renders speech through the Windows Speech API via PowerShell
type SAPINarrator struct {
	config Config
}

func newSAPINarrator(config Config) (*SAPINarrator, error) {
	if platformEngine() != EngineTypeSAPI {
		return nil, fmt.Errorf("SAPI engine only supports Windows")
	}
	if config.Speed <= 0 {
		config.Speed = 1
	}
	if config.Volume <= 0 {
		config.Volume = 1
	}
	return &SAPINarrator{config: config}, nil
}

func (s *SAPINarrator) Ready(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
		"Add-Type -AssemblyName System.Speech").Run(); err != nil {
		return fmt.Errorf("System.Speech unavailable: %w", err)
	}
	return nil
}

func (s *SAPINarrator) Synthesize(ctx context.Context, text string, voice Voice) (audio.Resource, error) {
	return renderToWAV(ctx, "powershell", func(path string) []string {
		return []string{"-NoProfile", "-Command", sapiScript(s.config, voice, path, text)}
	})
}

// sapiScript writes one utterance to a wav file.
func sapiScript(config Config, voice Voice, wavPath, text string) string {
	var culture string
	if voice.LanguageTag != "" {
		culture = fmt.Sprintf(
			"$synth.SelectVoiceByHints('NotSet', 'NotSet', 0, [System.Globalization.CultureInfo]'%s'); ",
			psQuote(voice.LanguageTag))
	}
	return fmt.Sprintf(`Add-Type -AssemblyName System.Speech; `+
		`$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer; `+
		`%s$synth.Rate = %d; $synth.Volume = %d; `+
		`$synth.SetOutputToWaveFile('%s'); $synth.Speak('%s'); $synth.Dispose()`,
		culture,
		clampInt(int(config.Speed*10)-10, -10, 10), // SAPI range is -10 to 10
		clampInt(int(config.Volume*100), 0, 100),
		psQuote(wavPath),
		psQuote(text))
}

func (s *SAPINarrator) Voices(ctx context.Context) ([]string, error) {
	output, err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
		`Add-Type -AssemblyName System.Speech; `+
			`(New-Object System.Speech.Synthesis.SpeechSynthesizer).GetInstalledVoices() | `+
			`ForEach-Object { $_.VoiceInfo.Name }`).Output()
	if err != nil {
		return nil, err
	}
	var voices []string
	for _, line := range strings.Split(string(output), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			voices = append(voices, name)
		}
	}
	return voices, nil
}

// psQuote escapes s for a single-quoted PowerShell string.
func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// renderToWAV runs a command that writes speech to the temp file path it
// is given, and hands the file over as a resource released on use.
func renderToWAV(ctx context.Context, name string, args func(path string) []string) (audio.Resource, error) {
	out, err := os.CreateTemp("", "airadio-"+filepath.Base(name)+"-*.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	out.Close()

	cmd := exec.CommandContext(ctx, name, args(out.Name())...)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(out.Name())
		logrus.WithField("output", strings.TrimSpace(string(output))).Debugf("%s failed", filepath.Base(name))
		return nil, fmt.Errorf("%w: %s: %w", ErrGenerationFailed, filepath.Base(name), err)
	}
	return audio.NewTempResource(out.Name()), nil
}
