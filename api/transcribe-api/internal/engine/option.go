// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_engine

import (
	"fmt"
	"net/url"

	"github.com/scribeai/config"
	"github.com/scribeai/pkg/commons"
)

type deepgramOption struct {
	logger   commons.Logger
	key      string
	model    string
	language string
}

func NewDeepgramOption(logger commons.Logger, cfg config.SpeechEngineConfig) (*deepgramOption, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("illegal engine config: missing key")
	}
	return &deepgramOption{
		logger:   logger,
		key:      cfg.Key,
		model:    cfg.Model,
		language: cfg.Language,
	}, nil
}

func (o *deepgramOption) GetKey() string {
	return o.key
}

func (o *deepgramOption) GetEncoding() string {
	return "linear16"
}

// GetSpeechToTextConnectionString builds the live-listen URL. The fixed
// parameters match the relay contract: LINEAR16 at 16 kHz mono with interim
// results and speaker diarization enabled.
func (o *deepgramOption) GetSpeechToTextConnectionString() string {
	baseURL := "wss://api.deepgram.com/v1/listen"
	params := url.Values{}
	params.Add("encoding", o.GetEncoding())
	params.Add("sample_rate", "16000")
	params.Add("punctuate", "true")
	params.Add("interim_results", "true")
	params.Add("diarize", "true")
	if o.model != "" {
		params.Add("model", o.model)
	}
	if o.language != "" {
		params.Add("language", o.language)
	}
	return fmt.Sprintf("%s?%s", baseURL, params.Encode())
}
