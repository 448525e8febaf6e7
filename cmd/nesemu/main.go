// Package main implements the nesemu NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"

	"nesemu/internal/app"
	"nesemu/internal/statsview"
	"nesemu/internal/version"
)

func main() {
	var (
		romFile     = flag.String("rom", "", "Path to NES ROM file")
		configFile  = flag.String("config", "", "Path to configuration file")
		debug       = flag.Bool("debug", false, "Show the debug panel, start paused and enable logging")
		nogui       = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		frames      = flag.Int("frames", app.DefaultHeadlessFrames, "Frames to run in headless mode")
		screenshots = flag.String("screenshots", "", "Directory for headless PNG screenshots")
		profileMode = flag.String("profile", "", "Write a profile: cpu, mem or trace")
		stats       = flag.Bool("statsview", false, "Serve runtime charts at "+statsview.DefaultAddress)
		record      = flag.String("record", "", "Record audio to a WAV file")
		trace       = flag.String("trace", "", "Write a CPU instruction trace to a file")
		help        = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage(usageConfig(*configFile))
		os.Exit(0)
	}

	if *showVersion {
		version.PrintBuildInfo(os.Stdout)
		os.Exit(0)
	}

	if err := run(runOptions{
		rom:         *romFile,
		configPath:  *configFile,
		debug:       *debug,
		headless:    *nogui,
		frames:      *frames,
		screenshots: *screenshots,
		profileMode: *profileMode,
		stats:       *stats,
		record:      *record,
		trace:       *trace,
	}); err != nil {
		log.Fatalf("[APP] %v", err)
	}
}

type runOptions struct {
	rom         string
	configPath  string
	debug       bool
	headless    bool
	frames      int
	screenshots string
	profileMode string
	stats       bool
	record      string
	trace       string
}

func run(opts runOptions) error {
	if opts.headless && opts.rom == "" {
		return fmt.Errorf("ROM file required for headless mode")
	}

	if opts.profileMode != "" {
		stop, err := startProfile(opts.profileMode)
		if err != nil {
			return err
		}
		defer stop()
	}

	if opts.stats {
		statsview.Launch(os.Stdout, statsview.DefaultAddress)
	}

	config, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyOverrides(config, opts)

	application, err := app.NewApplicationWithConfig(config, opts.headless)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("[APP] Cleanup error: %v", err)
		}
	}()

	setupGracefulShutdown(application)

	if opts.rom != "" {
		if err := application.LoadROM(opts.rom); err != nil {
			return fmt.Errorf("failed to load ROM: %w", err)
		}
	}

	if opts.headless {
		application.SetMaxFrames(opts.frames)
	} else {
		w, h := config.GetWindowResolution()
		log.Printf("[APP] Window %dx%d, audio %s at %d Hz", w, h, enabledString(config.Audio.Enabled), config.Audio.SampleRate)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %w", err)
	}

	log.Printf("[APP] %d frames in %v (%.1f fps)", application.GetFrameCount(), application.GetUptime(), application.GetFPS())
	return nil
}

// loadConfig reads path, or the default location when path is empty
func loadConfig(path string) (*app.Config, error) {
	if path == "" {
		path = app.GetDefaultConfigPath()
	}

	config := app.NewConfig()
	if err := config.LoadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return config, nil
}

// applyOverrides lets command line flags win over the config file
func applyOverrides(config *app.Config, opts runOptions) {
	if opts.debug {
		config.UpdateDebug(true, true, config.Debug.TracePath)
		config.Emulation.StartPaused = true
	}
	if opts.headless {
		config.Video.Backend = "headless"
	}
	if opts.screenshots != "" {
		config.Paths.Screenshots = opts.screenshots
	}
	if opts.record != "" {
		config.Audio.RecordPath = opts.record
	}
	if opts.trace != "" {
		config.Debug.TracePath = opts.trace
	}
}

// startProfile starts pkg/profile in the requested mode and returns its
// stop function
func startProfile(mode string) (func(), error) {
	var option func(*profile.Profile)
	switch mode {
	case "cpu":
		option = profile.CPUProfile
	case "mem":
		option = profile.MemProfile
	case "trace":
		option = profile.TraceProfile
	default:
		return nil, fmt.Errorf("unknown profile mode %q (want cpu, mem or trace)", mode)
	}

	p := profile.Start(option, profile.ProfilePath("."), profile.NoShutdownHook)
	return p.Stop, nil
}

// setupGracefulShutdown stops the main loop on interrupt
func setupGracefulShutdown(application *app.Application) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Printf("[APP] Interrupt received, shutting down")
		application.Stop()
	}()
}

// enabledString returns "enabled" or "disabled" based on boolean value
func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// usageConfig loads the key layout shown by -help. A missing file is not
// created here; the defaults are shown instead.
func usageConfig(path string) *app.Config {
	config := app.NewConfig()
	if path == "" {
		path = app.GetDefaultConfigPath()
	}
	if _, err := os.Stat(path); err != nil {
		return config
	}
	if err := config.LoadFromFile(path); err != nil {
		log.Printf("[APP] Showing default controls: %v", err)
		return app.NewConfig()
	}
	return config
}

func printUsage(config *app.Config) {
	fmt.Println("nesemu - cycle-accurate NES emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nesemu -rom <file> [options]        # Start with ROM loaded")
	fmt.Println("  nesemu -nogui -rom <file> [options] # Run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  nesemu -rom game.nes -debug         # Step through with the debug panel")
	fmt.Println("  nesemu -nogui -rom test.nes -frames 600 -screenshots shots")
	fmt.Println("  nesemu -rom game.nes -record out.wav -profile cpu")
	fmt.Println()
	fmt.Println("CONTROLS:")
	fmt.Printf("  Player 1:  %s\n", config.Input.Player1Keys.Describe())
	fmt.Printf("  Player 2:  %s\n", config.Input.Player2Keys.Describe())
	fmt.Println()
	fmt.Println("  Space      - Run / pause")
	fmt.Println("  C          - Step one instruction (paused)")
	fmt.Println("  F          - Step one frame (paused)")
	fmt.Println("  R          - Reset")
	fmt.Println("  P          - Cycle pattern table palette")
	fmt.Println("  Tab        - Toggle debug panel")
	fmt.Println("  Escape (2x) - Quit")
	fmt.Println()
	fmt.Printf("CONFIGURATION:\n  Config file: %s\n", app.GetDefaultConfigPath())
	fmt.Println()
	fmt.Println("SUPPORTED MAPPERS: 000 NROM, 001 MMC1, 002 UxROM, 003 CNROM, 004 MMC3, 066 GxROM")
}
