package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"airadio/internal/cli/scheme/colours"
	"airadio/internal/config"
	"airadio/internal/radio/station"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		configFile string
		app        *station.Station
	)

	// handler defers to the station built once configuration is loaded.
	handler := func(f func(*station.Station, *cobra.Command, []string)) func(*cobra.Command, []string) {
		return func(cmd *cobra.Command, args []string) {
			f(app, cmd, args)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "airadio",
		Short: "📻 An AI DJ that hosts your radio show",
		Long: `
┌─────────────────────────────────────┐
│  📻 Welcome to AI Radio! 🎙️        │
│  Your own DJ, live on the air       │
└─────────────────────────────────────┘

AI Radio plays a show script: the DJ talks, the music plays,
and you can skip, favorite or set a sleep timer as it goes. 🎶
		`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(configFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := config.SetupLogging(cfg.Log); err != nil {
				return err
			}
			app = station.New(cfg)
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			app.ShowWelcome()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default $HOME/.airadio/airadio.yaml)")

	// Play command
	playCmd := &cobra.Command{
		Use:   "play <show.json>",
		Short: "▶️ Play a show",
		Long:  "Play a show script from start to finish, with live controls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dj, _ := cmd.Flags().GetString("dj")
			sleep, _ := cmd.Flags().GetDuration("sleep")
			interactive, _ := cmd.Flags().GetBool("interactive")
			return app.Play(cmd.Context(), args[0], station.PlayOptions{
				DJ:          dj,
				Sleep:       sleep,
				Interactive: interactive,
			})
		},
	}

	enginesCmd := &cobra.Command{
		Use:   "engines",
		Short: "🎙️ List narration engines",
		Run:   handler((*station.Station).ListEngines),
	}

	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "🎤 List narration voices",
		Long:  "List the voices offered by the configured narration engine",
		Run:   handler((*station.Station).ListVoices),
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "📊 Show listening history",
		Run:   handler((*station.Station).ShowHistory),
	}

	diaryCmd := &cobra.Command{
		Use:   "diary [dj]",
		Short: "📔 Read a DJ's diary",
		Args:  cobra.MaximumNArgs(1),
		Run:   handler((*station.Station).ShowDiary),
	}

	libraryCmd := &cobra.Command{
		Use:   "library [dir]",
		Short: "🎵 List playable tracks",
		Args:  cobra.MaximumNArgs(1),
		Run:   handler((*station.Station).ListLibrary),
	}

	// Cache commands
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "💾 Manage the narration cache",
	}
	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "📊 Show narration cache statistics",
			Run:   handler((*station.Station).ShowCacheStatus),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "🗑️ Clear the narration cache",
			Run:   handler((*station.Station).ClearCache),
		},
	)

	// Add flags
	playCmd.Flags().String("dj", "", "DJ name, overriding the show and config")
	playCmd.Flags().Duration("sleep", 0, "Sign off after this long, e.g. 30m")
	playCmd.Flags().BoolP("interactive", "i", true, "Read controls from the keyboard")
	playCmd.Flags().StringP("music-dir", "m", "", "Directory of audio files to play")
	playCmd.Flags().String("backend", "", "Audio backend: speaker or virtual")
	playCmd.Flags().String("lang", "", "Narration language tag, e.g. en-GB")
	playCmd.Flags().String("tier", "", "Narration voice tier: standard, neural or generative")
	playCmd.Flags().String("listen", "", "Serve the remote control on this address, e.g. :8080")
	historyCmd.Flags().IntP("limit", "l", 0, "Show only the most played tracks")

	for key, flag := range map[string]string{
		"library.dir":   "music-dir",
		"audio.backend": "backend",
		"tts.language":  "lang",
		"tts.tier":      "tier",
		"remote.listen": "listen",
	} {
		if err := viper.BindPFlag(key, playCmd.Flags().Lookup(flag)); err != nil {
			colours.Error.Printf("❌ Error: %v\n", err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(playCmd, enginesCmd, voicesCmd, historyCmd, diaryCmd, libraryCmd, cacheCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
	if ctx.Err() != nil {
		fmt.Println("\n" + colours.Warning.Sprint("👋 Goodbye! Stay tuned! 📻"))
	}
}
