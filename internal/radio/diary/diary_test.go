package diary

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockThinker struct {
	mock.Mock
}

func (m *mockThinker) Think(ctx context.Context, dj string, tracks []string) (string, error) {
	args := m.Called(ctx, dj, tracks)
	return args.String(0), args.Error(1)
}

func TestSummaryUsesThinker(t *testing.T) {
	th := &mockThinker{}
	th.On("Think", mock.Anything, "Nova", []string{"a", "b"}).Return("Good crowd tonight.", nil)

	d := NewFileDiary(t.TempDir(), th)
	require.NoError(t, d.SaveSessionSummary(context.Background(), "Nova", []string{"a", "b"}))

	entries, err := d.Entries("Nova")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Good crowd tonight.", entries[0].Content)
	assert.Equal(t, KindThought, entries[0].Type)
	th.AssertExpectations(t)
}

func TestSummaryFallsBackToTemplate(t *testing.T) {
	th := &mockThinker{}
	th.On("Think", mock.Anything, "Nova", mock.Anything).Return("", errors.New("ollama down"))

	d := NewFileDiary(t.TempDir(), th)
	require.NoError(t, d.SaveSessionSummary(context.Background(), "Nova", []string{"a", "b", "c"}))

	entries, err := d.Entries("Nova")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Played 3 songs tonight, from a to c.", entries[0].Content)
}

func TestSummaryWithoutThinker(t *testing.T) {
	d := NewFileDiary(t.TempDir(), nil)
	require.NoError(t, d.SaveSessionSummary(context.Background(), "Nova", nil))

	entries, err := d.Entries("Nova")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Content, "Quiet show")
}

func TestSummaryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewFileDiary(t.TempDir(), nil)
	assert.ErrorIs(t, d.SaveSessionSummary(ctx, "Nova", nil), context.Canceled)
}

func TestDiaryKeepsNewestFifty(t *testing.T) {
	d := NewFileDiary(t.TempDir(), nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	d.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}

	for i := 0; i < MaxEntries+5; i++ {
		require.NoError(t, d.Add("Nova", fmt.Sprintf("entry %d", i), KindMilestone))
	}

	entries, err := d.Entries("Nova")
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, fmt.Sprintf("entry %d", MaxEntries+4), entries[0].Content)
	assert.Equal(t, "entry 5", entries[MaxEntries-1].Content)
}

func TestDiaryPathIsSanitised(t *testing.T) {
	d := NewFileDiary("/diaries", nil)
	assert.Equal(t, filepath.Join("/diaries", "DJ_Nova_.json"), d.path("DJ Nova/"))
	assert.Equal(t, filepath.Join("/diaries", "dj.json"), d.path("  "))
}

func TestEntriesMissingDiary(t *testing.T) {
	entries, err := NewFileDiary(t.TempDir(), nil).Entries("nobody")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
