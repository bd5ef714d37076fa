// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package config

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// SpeechEngineConfig holds the upstream speech-recognition engine settings.
type SpeechEngineConfig struct {
	Provider string `mapstructure:"provider" validate:"required"`
	Key      string `mapstructure:"key" validate:"required"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
}

// CaptureConfig holds the client-side capture agent settings.
type CaptureConfig struct {
	SampleRate   int    `mapstructure:"sample_rate" validate:"required"`
	FrameSamples int    `mapstructure:"frame_samples" validate:"required"`
	RelayURL     string `mapstructure:"relay_url" validate:"required"`
	Token        string `mapstructure:"token"`
	MeetingHost  string `mapstructure:"meeting_host"`
}

// Application config structure
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Secret   string `mapstructure:"secret" validate:"required"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	LogPath  string `mapstructure:"log_path"`

	SpeechEngine SpeechEngineConfig `mapstructure:"speech_engine" validate:"required"`
	Capture      CaptureConfig      `mapstructure:"capture" validate:"required"`
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		log.Printf("Reading from env varaibles.")
	}

	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// setting all default values
	// keeping watch on https://github.com/spf13/viper/issues/188

	v.SetDefault("SERVICE_NAME", "transcribe-api")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 5000)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")

	v.SetDefault("SPEECH_ENGINE__PROVIDER", "deepgram")
	v.SetDefault("SPEECH_ENGINE__MODEL", "")
	v.SetDefault("SPEECH_ENGINE__LANGUAGE", "")

	v.SetDefault("CAPTURE__SAMPLE_RATE", 48000)
	v.SetDefault("CAPTURE__FRAME_SAMPLES", 1024)
	v.SetDefault("CAPTURE__RELAY_URL", "ws://localhost:5000/v1/listen")
	v.SetDefault("CAPTURE__TOKEN", "")
	v.SetDefault("CAPTURE__MEETING_HOST", "http://localhost:5000")
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// valdating the app config
	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}
