package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/roeyazroel/launchpad-tui/internal/ai"
	"github.com/roeyazroel/launchpad-tui/internal/config"
	"github.com/roeyazroel/launchpad-tui/internal/launchpad"
	"github.com/roeyazroel/launchpad-tui/internal/logger"
	"github.com/roeyazroel/launchpad-tui/internal/tui"
)

func main() {
	showVersion := flag.BoolP("version", "v", false, "print version information and exit")
	offline := flag.Bool("offline", false, "use recorded Launchpad responses instead of the live service")
	project := flag.String("project", "", "Launchpad project to list (overrides LAUNCHPAD_PROJECT)")
	statusName := flag.String("status", "", "bug task status filter, e.g. \"New\" or \"In Progress\" (empty lists every state)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warning, error")
	logFile := flag.String("log-file", "", "log file path")
	flag.Parse()

	if *showVersion {
		fmt.Println(VersionInfo())
		os.Exit(0)
	}

	// Load configuration from environment
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Please set the %s environment variable.\n", config.GoogleAPIKeyEnv)
		os.Exit(1)
	}
	if *project != "" {
		cfg.Project = *project
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	prefs := config.LoadPrefs("")

	statusValue := prefs.DefaultStatus
	if *statusName != "" {
		statusValue = *statusName
	}
	var status launchpad.Status
	if statusValue != "" {
		status, err = launchpad.ParseStatus(statusValue)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// Initialize logger
	if err := logger.Init(cfg.LogFile, parseLogLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Application starting")
	logger.Debug("Configuration: Project=%s, Status=%s, Offline=%v", cfg.Project, status, *offline)

	var fetcher launchpad.Fetcher
	if *offline {
		fetcher = launchpad.NewFakeClient()
	} else {
		fetcher = launchpad.NewClient(launchpad.ClientConfig{Timeout: cfg.Timeout})
	}

	gemini := ai.NewClient(ai.ClientConfig{APIKey: cfg.GoogleAPIKey})

	app := tui.NewApp(tui.Options{
		Fetcher:           fetcher,
		Project:           cfg.Project,
		Status:            status,
		Gemini:            gemini,
		Editor:            cfg.Editor,
		SpinnerLabelIndex: prefs.SpinnerLabelIndex,
	})

	runErr := app.Run()

	prefs.SpinnerLabelIndex = app.SpinnerLabelIndex()
	prefs.DefaultStatus = status.Display()
	if err := config.SavePrefs("", prefs); err != nil {
		logger.ErrorWithErr(err, "Failed to save preferences")
	}

	if runErr != nil {
		logger.ErrorWithErr(runErr, "Application error")
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", runErr)
		os.Exit(1)
	}

	logger.Info("Application shutdown")
}

// parseLogLevel converts a string log level to a logger.LogLevel.
func parseLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warning":
		return logger.LevelWarning
	case "error":
		return logger.LevelError
	default:
		return logger.LevelWarning
	}
}
