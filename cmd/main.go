package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"syllaread/internal/acquire"
	"syllaread/internal/cli/scheme/colours"
	"syllaread/internal/cli/terminal"
	"syllaread/internal/clock"
	"syllaread/internal/config"
	"syllaread/internal/reader"
	"syllaread/internal/segment"
	"syllaread/internal/segment/hyphen"
	"syllaread/internal/source"
)

func main() {

	config.SetDefaults()

	clk := clock.System()

	hyphenator, err := hyphen.New(hyphen.KindAuto, viper.GetString("segment.patterns"))
	if err != nil {
		logrus.WithError(err).Fatal("failed to create hyphenator")
	}
	parser := segment.NewParser(segment.WithHyphenator(hyphenator))

	store := acquire.NewFileStore(clk, cacheDirectory())
	svc := acquire.NewService(
		source.NewWikipedia(viper.GetString("source.base_url")),
		store,
		acquire.Options{
			CompleteThreshold: viper.GetInt("acquire.complete_threshold"),
			DailyTTL:          viper.GetDuration("acquire.daily_ttl"),
			NamedTTL:          viper.GetDuration("acquire.named_ttl"),
			Timeout:           viper.GetDuration("acquire.timeout"),
			Retries:           viper.GetInt("acquire.retries"),
			BackoffBase:       viper.GetDuration("acquire.backoff_base"),
		},
	)

	app := reader.New(svc, parser, terminal.New(), clk, reader.Config{
		Speed:          time.Duration(viper.GetInt("playback.speed_ms")) * time.Millisecond,
		MergeThreshold: viper.GetFloat64("acquire.merge_threshold"),
	})

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		app.Shutdown()
		fmt.Println("\n" + colours.Warning.Sprint("Goodbye!"))
		os.Exit(0)
	}()

	rootCmd := &cobra.Command{
		Use:   "syllaread",
		Short: "Paced, syllable-by-syllable reading practice",
		Long: `
syllaread paces you through a text one speech-syllable at a time at an
adjustable interval, for fluency-shaping practice. Content comes from a
remote text source and is cached locally.
		`,
		Run: func(cmd *cobra.Command, args []string) {
			showWelcome()
		},
	}

	dailyCmd := &cobra.Command{
		Use:   "daily [YYYY-MM-DD]",
		Short: "Read the featured text for a date (default today)",
		Run:   app.ReadDaily,
	}

	readCmd := &cobra.Command{
		Use:   "read <page name>",
		Short: "Read a specific page by name",
		Run:   app.ReadNamed,
	}

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show playback settings",
		Run:   app.ShowSettings,
	}

	rootCmd.AddCommand(dailyCmd, readCmd, settingsCmd, cacheCommand(store))

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func showWelcome() {
	fmt.Println()
	colours.Title.Println("Welcome to syllaread")
	fmt.Println()
	colours.Info.Println("Available commands:")
	fmt.Println("  - syllaread daily    - Read today's featured text")
	fmt.Println("  - syllaread read     - Read a page by name")
	fmt.Println("  - syllaread cache    - Inspect or clear the content cache")
	fmt.Println("  - syllaread settings - Show playback settings")
	fmt.Println()
}

func cacheCommand(store acquire.Store) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local content cache",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache status",
		Run: func(cmd *cobra.Command, args []string) {
			colours.Title.Println("Content Cache Status")
			for k, v := range store.Info() {
				colours.Info.Printf("  %s: %v\n", k, v)
			}
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached content",
		Run: func(cmd *cobra.Command, args []string) {
			store.Clear()
			colours.Success.Println("Cache cleared")
		},
	}

	cacheCmd.AddCommand(statusCmd, clearCmd)
	return cacheCmd
}

// cacheDirectory returns the configured cache dir, falling back through
// the user cache dir, the home dir and the working dir.
func cacheDirectory() string {
	if dir := viper.GetString("cache.dir"); dir != "" {
		return dir
	}
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "syllaread")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".syllaread", "cache")
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, "cache")
	}
	return "cache"
}

// Configuration management with Viper
func init() {
	viper.SetConfigName("syllaread")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.syllaread")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("syllaread")
	viper.AutomaticEnv()

	viper.ReadInConfig()
}
