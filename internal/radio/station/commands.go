package station

import (
	"context"
	"fmt"
	"sort"
	"time"

	"airadio/internal/cli/scheme/colours"
	"airadio/internal/domain/library"
	"airadio/internal/radio/diary"
	"airadio/internal/radio/tts"

	"github.com/spf13/cobra"
)

func (s *Station) ShowWelcome() {
	fmt.Fprintln(s.out)
	colours.Title.Fprintln(s.out, "📻 Welcome to AI Radio! 📻")
	fmt.Fprintln(s.out)
	colours.Info.Fprintln(s.out, "📚 Available commands:")
	fmt.Fprintln(s.out, "  • airadio play <show.json> - Play a show")
	fmt.Fprintln(s.out, "  • airadio voices           - List narration voices")
	fmt.Fprintln(s.out, "  • airadio engines          - List narration engines")
	fmt.Fprintln(s.out, "  • airadio history          - Show listening history")
	fmt.Fprintln(s.out, "  • airadio diary <dj>       - Read a DJ's diary")
	fmt.Fprintln(s.out, "  • airadio library <dir>    - List playable tracks")
	fmt.Fprintln(s.out)
}

func (s *Station) ListEngines(cmd *cobra.Command, args []string) {
	colours.Title.Fprintln(s.out, "🎙️ Narration engines")
	for _, e := range tts.GetAvailableEngines() {
		fmt.Fprintf(s.out, "  • %s\n", e)
	}
}

func (s *Station) ListVoices(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	n, err := s.narrator()
	if err != nil {
		colours.Error.Fprintf(s.out, "❌ %v\n", err)
		return
	}

	if d, ok := n.(tts.VoiceDescriber); ok {
		infos, err := d.VoiceInfo(ctx)
		if err != nil {
			colours.Error.Fprintf(s.out, "❌ Failed to list voices: %v\n", err)
			return
		}
		colours.Title.Fprintf(s.out, "🎤 %d voices\n", len(infos))
		for _, v := range infos {
			colours.Info.Fprintf(s.out, "  %s", v.Name)
			fmt.Fprintf(s.out, " (%s, %s) %s\n", v.LanguageCode, v.Gender, v.Description)
		}
		return
	}

	voices, err := n.Voices(ctx)
	if err != nil {
		colours.Error.Fprintf(s.out, "❌ Failed to list voices: %v\n", err)
		return
	}
	colours.Title.Fprintf(s.out, "🎤 %d voices\n", len(voices))
	for _, v := range voices {
		fmt.Fprintf(s.out, "  • %s\n", v)
	}
}

func (s *Station) ShowHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	store, closeStore, err := s.historyStore()
	if err != nil {
		colours.Error.Fprintf(s.out, "❌ %v\n", err)
		return
	}
	defer closeStore()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		colours.Error.Fprintf(s.out, "❌ Failed to read history: %v\n", err)
		return
	}
	if len(stats) == 0 {
		colours.Warning.Fprintln(s.out, "🔍 Nothing played yet.")
		return
	}

	refs := make([]string, 0, len(stats))
	for ref := range stats {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		a, b := stats[refs[i]], stats[refs[j]]
		if a.PlayCount != b.PlayCount {
			return a.PlayCount > b.PlayCount
		}
		return refs[i] < refs[j]
	})
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}

	colours.Title.Fprintln(s.out, "📊 Listening history")
	for i, ref := range refs {
		e := stats[ref]
		fmt.Fprintf(s.out, "  %d. ", i+1)
		colours.Track.Fprint(s.out, ref)
		fmt.Fprintf(s.out, "\n     ▶️ %d  ✅ %d  ⏭️ %d  ❤️ %d  👎 %d\n",
			e.PlayCount, e.FinishCount, e.SkipCount, e.FavoriteCount, e.DislikeCount)
	}
}

func (s *Station) ShowDiary(cmd *cobra.Command, args []string) {
	dj := s.cfg.Player.DJ
	if len(args) > 0 {
		dj = args[0]
	}

	entries, err := diary.NewFileDiary(s.cfg.Diary.Path, nil).Entries(dj)
	if err != nil {
		colours.Error.Fprintf(s.out, "❌ %v\n", err)
		return
	}
	if len(entries) == 0 {
		colours.Warning.Fprintf(s.out, "📔 %s hasn't written anything yet.\n", dj)
		return
	}

	colours.Title.Fprintf(s.out, "📔 %s's diary\n", dj)
	for _, e := range entries {
		colours.Info.Fprintf(s.out, "  %s ", e.Timestamp.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(s.out, "%s\n", e.Content)
	}
}

func (s *Station) ListLibrary(cmd *cobra.Command, args []string) {
	dir := s.cfg.Library.Dir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		colours.Error.Fprintln(s.out, "❌ No music directory given")
		return
	}

	lib := library.NewSessionStore()
	n, err := lib.ScanDir(dir)
	if err != nil {
		colours.Error.Fprintf(s.out, "❌ %v\n", err)
		return
	}

	colours.Title.Fprintf(s.out, "🎵 %d tracks in %s\n", n, dir)
	for _, t := range lib.Tracks() {
		colours.Track.Fprintf(s.out, "  %s", t.Name)
		colours.Info.Fprintf(s.out, "  ID: %s\n", t.ID)
	}
}

func (s *Station) ShowCacheStatus(cmd *cobra.Command, args []string) {
	n, err := s.narrator()
	if err != nil {
		colours.Error.Fprintf(s.out, "❌ %v\n", err)
		return
	}
	c, ok := n.(tts.CacheableNarrator)
	if !ok {
		colours.Warning.Fprintln(s.out, "ℹ️  This narration engine keeps no cache")
		return
	}
	stats, err := c.CacheStats()
	if err != nil {
		colours.Error.Fprintf(s.out, "❌ Failed to read cache: %v\n", err)
		return
	}

	colours.Title.Fprintln(s.out, "📊 Narration cache")
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		colours.Info.Fprintf(s.out, "  %s: ", k)
		fmt.Fprintf(s.out, "%v\n", stats[k])
	}
}

func (s *Station) ClearCache(cmd *cobra.Command, args []string) {
	n, err := s.narrator()
	if err != nil {
		colours.Error.Fprintf(s.out, "❌ %v\n", err)
		return
	}
	c, ok := n.(tts.CacheableNarrator)
	if !ok {
		colours.Warning.Fprintln(s.out, "ℹ️  This narration engine keeps no cache")
		return
	}
	if err := c.ClearCache(); err != nil {
		colours.Error.Fprintf(s.out, "❌ Failed to clear cache: %v\n", err)
		return
	}
	colours.Success.Fprintln(s.out, "✅ Narration cache cleared")
}
