package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFormat = beep.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}

func TestToneDuration(t *testing.T) {
	res := Tone("beep", testFormat, 440, 250*time.Millisecond)

	d, err := Duration(res)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
	assert.Equal(t, "beep", res.Name())
	assert.NoError(t, res.Release())
}

func TestBufferResourceCanBeOpenedTwice(t *testing.T) {
	res := Silence("quiet", testFormat, 100*time.Millisecond)

	for i := 0; i < 2; i++ {
		s, format, err := res.Open()
		require.NoError(t, err)
		assert.Equal(t, testFormat.SampleRate, format.SampleRate)
		assert.Equal(t, 800, s.Len())
		assert.Equal(t, 0, s.Position())
		require.NoError(t, s.Close())
	}
}

func TestFileResourceUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	_, _, err := NewFileResource(path).Open()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileResourceMissingFile(t *testing.T) {
	_, _, err := NewFileResource(filepath.Join(t.TempDir(), "gone.mp3")).Open()
	assert.Error(t, err)
}

func TestTempResourceReleaseRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

	res := NewTempResource(path)
	require.NoError(t, res.Release())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// second release is harmless
	assert.NoError(t, res.Release())
}

func TestPermanentResourceReleaseKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0644))

	require.NoError(t, NewFileResource(path).Release())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/b/Song.MP3"))
	assert.True(t, Supported("voice.wav"))
	assert.False(t, Supported("cover.png"))
}
