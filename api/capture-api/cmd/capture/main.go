// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	internal_capture "github.com/scribeai/api/capture-api/internal/audio/capture"
	internal_recorder "github.com/scribeai/api/capture-api/internal/audio/recorder"
	internal_session "github.com/scribeai/api/capture-api/internal/session"
	internal_transport "github.com/scribeai/api/capture-api/internal/transport"
	internal_type "github.com/scribeai/api/capture-api/internal/type"
	"github.com/scribeai/config"
	meetingClient "github.com/scribeai/pkg/clients/meeting"
	"github.com/scribeai/pkg/commons"
)

func main() {
	vConfig, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Unable to initialize config %v", err)
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		log.Fatalf("Unable to read application config %v", err)
	}

	logger, err := commons.NewApplicationLogger(
		commons.Name("capture"),
		commons.Path(cfg.LogPath),
		commons.Level(cfg.LogLevel),
	)
	if err != nil {
		log.Fatalf("Unable to initialize logger %v", err)
	}
	defer logger.Sync()

	engine := internal_capture.NewPortaudioEngine(logger,
		cfg.Capture.SampleRate, cfg.Capture.FrameSamples)
	recorder := internal_recorder.NewAudioRecorder(logger)
	session := internal_session.NewSession(logger, engine, recorder,
		func(events internal_type.TransportEvents) internal_type.Transport {
			return internal_transport.NewWebsocketTransport(logger,
				cfg.Capture.RelayURL, cfg.Capture.Token, events)
		})
	meetings := meetingClient.NewMeetingServiceClient(cfg, logger)

	logger.Infow("capture agent ready", "session", session.ID())
	fmt.Println("commands: start | pause | resume | finalize | reset | status | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		command := strings.TrimSpace(scanner.Text())
		switch command {
		case "start":
			report(session.Start(context.Background()))
		case "pause":
			report(session.Pause())
		case "resume":
			report(session.Resume(context.Background()))
		case "finalize":
			result, err := session.Finalize()
			if err != nil {
				report(err)
				continue
			}
			fmt.Printf("captured %s of audio\n", result.Duration)
			fmt.Printf("transcript: %s\n", result.Transcript)
			upload(logger, meetings, cfg, result)
		case "reset":
			report(session.Reset())
		case "status":
			fmt.Printf("state=%s", session.State())
			if err := session.Err(); err != nil {
				fmt.Printf(" error=%v", err)
			}
			if interim := session.Interim(); interim != "" {
				fmt.Printf(" interim=%q", interim)
			}
			fmt.Println()
		case "quit", "exit":
			if session.State() != internal_session.StateIdle {
				report(session.Reset())
			}
			return
		case "":
		default:
			fmt.Printf("unknown command %q\n", command)
		}
	}
}

func report(err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println("ok")
}

func upload(logger commons.Logger, meetings meetingClient.MeetingServiceClient,
	cfg *config.AppConfig, result *internal_session.Result) {
	if cfg.Capture.MeetingHost == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	response, err := meetings.CreateMeeting(ctx, cfg.Capture.Token,
		&meetingClient.CreateMeetingRequest{
			Title:      fmt.Sprintf("Recording %s", time.Now().Format("2006-01-02 15:04")),
			Transcript: result.Transcript,
			Duration:   result.Duration,
			Audio:      result.Audio,
		})
	if err != nil {
		logger.Errorf("upload failed: %v", err)
		fmt.Printf("upload failed: %v\n", err)
		return
	}
	fmt.Printf("uploaded as meeting %s\n", response.Id)
}
