package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/handiism/udemy-downloader/internal/config"
	"github.com/handiism/udemy-downloader/internal/download"
	"github.com/handiism/udemy-downloader/internal/logger"
	"github.com/handiism/udemy-downloader/internal/udemy"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Command line flags
	var (
		urlsFlag    = flag.String("url", "", "Course URL(s) to download (space or newline separated); overrides configured topics")
		topicFlag   = flag.String("topic", "", "Only download this topic, or the folder under the destination for -url courses")
		outputFlag  = flag.String("output", "", "Destination folder (overrides config)")
		configFlag  = flag.String("config", "", "Path to config file (default: config.yaml in this or a parent folder)")
		maxPathFlag = flag.Int("max-path", 0, "Maximum path length (overrides folder_char_limit)")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag  = flag.Bool("dry-run", false, "Resolve courses without downloading")
	)

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintln(out, "Udemy Downloader - Download course materials from Udemy")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Usage:")
		fmt.Fprintln(out, "  udemy-dl [options]               download every topic in config.yaml")
		fmt.Fprintln(out, "  udemy-dl -url <URL> [options]")
		fmt.Fprintln(out, "  udemy-dl <URL>... [options]")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "For interactive mode, use: udemy-tui")
		fmt.Fprintln(out)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load config
	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	// Apply flags
	if *outputFlag != "" {
		settings.Destination = *outputFlag
	}
	if *maxPathFlag > 0 {
		settings.FolderCharLimit = *maxPathFlag
	}
	if *verboseFlag {
		settings.Logging.Level = "debug"
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n%v\n", err)
		return 1
	}

	if err := logger.Init(settings.Logging.Level, settings.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	log := logger.L()

	// Collect jobs
	urls := *urlsFlag
	if urls == "" && flag.NArg() > 0 {
		urls = strings.Join(flag.Args(), " ")
	}

	var jobs []download.Job
	if urls != "" {
		jobs, err = download.JobsFromURLs(urls, settings.TopicDestination(*topicFlag))
	} else {
		jobs, err = download.JobsFromTopics(settings, *topicFlag)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading course URLs: %v\n", err)
		if len(jobs) == 0 {
			return 1
		}
	}
	if len(jobs) == 0 {
		fmt.Fprintln(os.Stderr, "No courses to download: pass -url or add topics to config.yaml")
		flag.Usage()
		return 1
	}
	failed := err != nil

	api, err := udemy.NewAPIFromSettings(settings, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading cookie: %v\n", err)
		return 1
	}

	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create manager with progress callback
	manager := download.NewManager(settings, api, log, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "❌ "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		case download.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	})

	// Initialize
	fmt.Println("🎓 Udemy Downloader")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	if err := manager.Initialize(ctx, jobs); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nCancelled.")
			return 130
		}
		log.Warn("some courses could not be resolved", zap.Error(err))
		failed = true
	}

	if *dryRunFlag {
		fmt.Println("\n[Dry run - not downloading]")
		for _, name := range manager.GetCourseNames() {
			fmt.Println("   " + name)
		}
		if failed {
			return 1
		}
		return 0
	}

	// Start downloads
	fmt.Println("\n📥 Starting downloads...")
	fmt.Println()

	if err := manager.StartDownloads(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			return 130
		}
		log.Error("download finished with errors", zap.Error(err))
		failed = true
	}

	p := manager.GetProgress()
	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✨ Complete! Downloaded %d/%d courses, %d files (%.2f MB)\n",
		p.CoursesDone, p.CoursesTotal, p.Files, float64(p.Bytes)/1024/1024)
	if p.CoursesFailed > 0 {
		fmt.Printf("   %d course(s) failed, see the log above\n", p.CoursesFailed)
	}

	if failed {
		return 1
	}
	return 0
}
