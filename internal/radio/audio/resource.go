package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Resource is a playable piece of audio. Open may be called more than once;
// Release revokes whatever the resource holds (temporary files and the like).
type Resource interface {
	Name() string
	Open() (beep.StreamSeekCloser, beep.Format, error)
	Release() error
}

// FileResource decodes an mp3 or wav file from disk.
type FileResource struct {
	Path      string
	Temporary bool
}

func NewFileResource(path string) *FileResource {
	return &FileResource{Path: path}
}

// NewTempResource returns a resource whose file is removed on Release.
func NewTempResource(path string) *FileResource {
	return &FileResource{Path: path, Temporary: true}
}

func (r *FileResource) Name() string {
	return filepath.Base(r.Path)
}

func (r *FileResource) Open() (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open %s: %w", r.Path, err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(r.Path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.Path)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", r.Path, err)
	}
	return streamer, format, nil
}

func (r *FileResource) Release() error {
	if !r.Temporary {
		return nil
	}
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", r.Path, err)
	}
	return nil
}

// Supported reports whether path has an extension FileResource can decode.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}

// BufferResource serves audio held in memory.
type BufferResource struct {
	name string
	buf  *beep.Buffer
}

func NewBufferResource(name string, buf *beep.Buffer) *BufferResource {
	return &BufferResource{name: name, buf: buf}
}

func (r *BufferResource) Name() string { return r.name }

func (r *BufferResource) Open() (beep.StreamSeekCloser, beep.Format, error) {
	return nopCloser{r.buf.Streamer(0, r.buf.Len())}, r.buf.Format(), nil
}

func (r *BufferResource) Release() error { return nil }

type nopCloser struct {
	beep.StreamSeeker
}

func (nopCloser) Close() error { return nil }

// Silence returns d of silence in the given format.
func Silence(name string, format beep.Format, d time.Duration) *BufferResource {
	buf := beep.NewBuffer(format)
	buf.Append(beep.Silence(format.SampleRate.N(d)))
	return NewBufferResource(name, buf)
}

// Tone returns a quiet sine tone of length d.
func Tone(name string, format beep.Format, freq float64, d time.Duration) *BufferResource {
	var (
		rate  = float64(format.SampleRate)
		phase float64
	)
	sine := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := 0.2 * math.Sin(2*math.Pi*phase)
			samples[i][0], samples[i][1] = v, v
			phase += freq / rate
			if phase >= 1 {
				phase--
			}
		}
		return len(samples), true
	})

	buf := beep.NewBuffer(format)
	buf.Append(beep.Take(format.SampleRate.N(d), sine))
	return NewBufferResource(name, buf)
}

// Duration opens r just long enough to measure it.
func Duration(r Resource) (time.Duration, error) {
	s, format, err := r.Open()
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return format.SampleRate.D(s.Len()), nil
}
