// Priority One, a 911 dispatcher training simulator.
//
// Usage:
//
//	priorityone [-verbose] [-quiet] [-no-audio]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"priorityone/internal/audio"
	"priorityone/internal/call"
	"priorityone/internal/debrief"
	"priorityone/internal/dispatch"
	"priorityone/internal/display"
	"priorityone/internal/domain"
	"priorityone/internal/game"
	"priorityone/internal/live"
	"priorityone/internal/logger"
	"priorityone/internal/progress"
	"priorityone/internal/scenario"
)

const envAPIKey = "GEMINI_API_KEY"

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".priorityone/trainer.log", "file to write logs to (use \"stderr\" to log to console)")
	saveFile := flag.String("save-file", "", "progress save file (default: per-user config dir)")
	noAudio := flag.Bool("no-audio", false, "run without microphone and speakers (calls are text-only)")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Logs go to a file by default so the UI owns the terminal.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		if dir := filepath.Dir(*logFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Third-party libraries log through the std logger; keep that out
	// of the terminal too.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	savePath := *saveFile
	if savePath == "" {
		p, err := progress.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		savePath = p
	}

	// Wire dependencies.
	catalog := scenario.NewCatalog(log)
	store := progress.NewFileStore(savePath, log)

	director, err := game.NewDirector(catalog, store, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	apiKey := os.Getenv(envAPIKey)
	if apiKey == "" {
		log.Warn("%s not set; calls are disabled", envAPIKey)
	}

	// Audio hardware. With -no-audio the call still runs and grades on
	// the transcript; there is just nothing to hear or say.
	var mic call.Microphone = nullMic{}
	var playback call.Playback = nullPlayer{}
	var playDebrief func([]byte)
	var stopDebrief func()

	if !*noAudio {
		player, err := audio.NewStreamPlayer(log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: audio output init: %v\n", err)
			os.Exit(1)
		}
		defer player.Close()
		playback = player
		playDebrief = player.Enqueue
		stopDebrief = player.Flush
		mic = audio.NewCapture(log)
	} else {
		log.Info("audio disabled by flag")
	}

	dial := func(ctx context.Context, systemPrompt string) (call.RemoteSession, error) {
		if apiKey == "" {
			return nil, domain.ErrNoAPIKey
		}
		return live.Dial(ctx, apiKey, systemPrompt, log)
	}

	board := dispatch.New(log)
	coordinator := call.NewCoordinator(mic, playback, dial, board, log)

	grader := debrief.NewClient(apiKey, log)
	reviews := debrief.NewService(grader, grader, log)

	fmt.Println(display.RenderBanner())

	app := &display.App{
		Director:  director,
		Calls:     coordinator,
		Debrief:   reviews,
		PlayAudio: playDebrief,
		StopAudio: stopDebrief,
		Log:       log,
		NoAPIKey:  apiKey == "",
	}
	if err := display.Run(app); err != nil {
		log.Error("display: %v", err)
		os.Exit(1)
	}
}

// nullMic satisfies the microphone interface when audio is disabled.
type nullMic struct{}

func (nullMic) Start() error          { return nil }
func (nullMic) Stop()                 {}
func (nullMic) Frames() <-chan []byte { return nil }

// nullPlayer discards caller audio when audio is disabled.
type nullPlayer struct{}

func (nullPlayer) Enqueue([]byte) {}
func (nullPlayer) Speaking() bool { return false }
func (nullPlayer) Flush()         {}
