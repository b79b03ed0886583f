package tts

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"airadio/internal/radio/audio"

	"cloud.google.com/go/texttospeech/apiv1"
	"github.com/sirupsen/logrus"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// a little under the 5000 byte request limit to be safe
const chunkLimit = 4800

// GoogleClassicNarrator synthesises with Cloud Text-to-Speech and keeps every
// rendered line as an mp3 in a cache directory keyed by text and voice.
type GoogleClassicNarrator struct {
	client       *texttospeech.Client
	speed        float64
	cacheRootDir string
	mu           sync.Mutex
}

func newGoogleClassicNarrator(config Config) (*GoogleClassicNarrator, error) {
	client, err := texttospeech.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}

	cacheDir := config.CachePath
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "airadio-tts")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	speed := config.Speed
	if speed <= 0 {
		speed = 1
	}

	return &GoogleClassicNarrator{
		client:       client,
		speed:        speed,
		cacheRootDir: cacheDir,
	}, nil
}

// voiceName picks a concrete Cloud voice for the language and tier.
func voiceName(v Voice) string {
	v = v.WithDefaults()
	switch v.Tier {
	case TierStandard:
		return v.LanguageTag + "-Standard-A"
	case TierGenerative:
		return v.LanguageTag + "-Chirp3-HD-Charon"
	default:
		return v.LanguageTag + "-Neural2-A"
	}
}

func (g *GoogleClassicNarrator) cachePath(text string, v Voice) string {
	name := voiceName(v)
	contentHash := md5Sum(text + name)[:16]
	return filepath.Join(g.cacheRootDir, strings.ToLower(v.WithDefaults().LanguageTag), contentHash+".mp3")
}

func (g *GoogleClassicNarrator) Synthesize(ctx context.Context, text string, voice Voice) (audio.Resource, error) {
	voice = voice.WithDefaults()
	path := g.cachePath(text, voice)

	// one line at a time so two identical requests do not both hit the API
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		logrus.WithField("file", path).Debug("Using cached narration")
		return audio.NewFileResource(path), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	name := voiceName(voice)
	audioCfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}
	// Chirp voices often don't support speakingRate/pitch/SSML, skip them
	if !strings.Contains(strings.ToLower(name), "chirp") {
		audioCfg.SpeakingRate = g.speed
	}

	var content []byte
	chunks := splitIntoChunks(text, chunkLimit)
	for chunkIndex, chunk := range chunks {
		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: voice.LanguageTag,
				Name:         name,
			},
			AudioConfig: audioCfg,
		}
		resp, err := g.client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %w", ErrGenerationFailed, chunkIndex, err)
		}
		// mp3 frames concatenate cleanly
		content = append(content, resp.AudioContent...)
	}

	tmp := path + ".part"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write narration to %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("failed to move narration into cache: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"file":   path,
		"chunks": len(chunks),
		"voice":  name,
	}).Debug("Cached narration")

	return audio.NewFileResource(path), nil
}

func (g *GoogleClassicNarrator) Ready(ctx context.Context) error {
	if _, err := g.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{LanguageCode: "en-US"}); err != nil {
		return fmt.Errorf("google tts unreachable: %w", err)
	}
	return nil
}

func (g *GoogleClassicNarrator) Voices(ctx context.Context) ([]string, error) {
	resp, err := g.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}
	voices := []string{}
	for _, v := range resp.Voices {
		voices = append(voices, v.Name)
	}
	return voices, nil
}

func (g *GoogleClassicNarrator) VoiceInfo(ctx context.Context) ([]VoiceInfo, error) {
	resp, err := g.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}
	infos := make([]VoiceInfo, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		lang := ""
		if len(v.LanguageCodes) > 0 {
			lang = v.LanguageCodes[0]
		}
		lower := strings.ToLower(v.Name)
		infos = append(infos, VoiceInfo{
			Name:         v.Name,
			LanguageCode: lang,
			Gender:       strings.ToLower(v.SsmlGender.String()),
			Natural:      strings.Contains(lower, "neural") || strings.Contains(lower, "chirp") || strings.Contains(lower, "wavenet"),
			Description:  fmt.Sprintf("%d Hz", v.NaturalSampleRateHertz),
		})
	}
	return infos, nil
}

// CacheStats returns cache statistics for the narrator
func (g *GoogleClassicNarrator) CacheStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalFiles int64
	var totalSize int64
	languages := map[string]int64{}

	err := filepath.Walk(g.cacheRootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Continue walking despite errors
		}

		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".mp3") {
			totalFiles++
			totalSize += info.Size()
			languages[filepath.Base(filepath.Dir(path))]++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	stats["cache_directory"] = g.cacheRootDir
	stats["cached_files"] = totalFiles
	stats["total_size_mb"] = float64(totalSize) / (1024 * 1024)
	stats["languages"] = languages

	return stats, nil
}

// ClearCache removes all cached files
func (g *GoogleClassicNarrator) ClearCache() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return os.RemoveAll(g.cacheRootDir)
}

func md5Sum(s string) string {
	h := md5.New()
	io.WriteString(h, s)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func splitIntoChunks(text string, limit int) []string {
	var chunks []string
	runes := []rune(text) // safe for UTF-8
	for i := 0; i < len(runes); i += limit {
		end := i + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
