// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package meeting_client

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/scribeai/config"
	"github.com/scribeai/pkg/commons"
)

// CreateMeetingRequest carries one finished recording to the meeting store.
type CreateMeetingRequest struct {
	Title      string
	Transcript string
	Duration   time.Duration
	Audio      []byte // complete WAV object; may be nil when nothing was captured
}

// CreateMeetingResponse is the store's acknowledgement.
type CreateMeetingResponse struct {
	Id string `json:"id"`
}

// MeetingServiceClient posts finished recordings to the meeting store. The
// store is an opaque sink: the client does not validate, retry or interpret
// beyond the returned id.
type MeetingServiceClient interface {
	CreateMeeting(ctx context.Context, token string, request *CreateMeetingRequest) (*CreateMeetingResponse, error)
}

type meetingServiceClient struct {
	cfg    *config.AppConfig
	logger commons.Logger
	http   *resty.Client
}

func NewMeetingServiceClient(cfg *config.AppConfig, logger commons.Logger) MeetingServiceClient {
	return &meetingServiceClient{
		cfg:    cfg,
		logger: logger,
		http: resty.New().
			SetBaseURL(cfg.Capture.MeetingHost).
			SetTimeout(30 * time.Second),
	}
}

func (client *meetingServiceClient) CreateMeeting(ctx context.Context, token string, request *CreateMeetingRequest) (*CreateMeetingResponse, error) {
	response := &CreateMeetingResponse{}
	req := client.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetFormData(map[string]string{
			"title":      request.Title,
			"transcript": request.Transcript,
			"duration":   fmt.Sprintf("%.3f", request.Duration.Seconds()),
		}).
		SetResult(response)
	if len(request.Audio) > 0 {
		req.SetFileReader("audio", "recording.wav", bytes.NewReader(request.Audio))
	}

	resp, err := req.Post("/v1/meetings")
	if err != nil {
		return nil, fmt.Errorf("meeting-client: create request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("meeting-client: create rejected with status %d: %s",
			resp.StatusCode(), resp.String())
	}
	client.logger.Infow("meeting-client: meeting created", "id", response.Id)
	return response, nil
}
