package tts

import (
	"fmt"
	"os"
)

type EngineType string

const (
	EngineTypeMock          EngineType = "mock"
	EngineTypeESpeak        EngineType = "espeak"
	EngineTypeSAPI          EngineType = "sapi"         // Windows only
	EngineTypeAVFoundation  EngineType = "avfoundation" // macOS only
	EngineTypeGoogleClassic EngineType = "googleclassic"
	EngineTypeAuto          EngineType = "auto" // Automatically choose best for platform
)

func (e EngineType) String() string {
	return string(e)
}

// NewNarrator creates a narration provider based on the provided config.
// A failure here is the one narration problem a session cannot recover from.
func NewNarrator(config Config) (Narrator, error) {
	if config.Type == "" || config.Type == EngineTypeAuto.String() {
		config.Type = bestEngine().String()
	}

	switch config.Type {
	case EngineTypeMock.String():
		return NewMockNarrator(config), nil

	case EngineTypeGoogleClassic.String():
		return newGoogleClassicNarrator(config)

	case EngineTypeESpeak.String():
		return newESpeakNarrator(config)

	case EngineTypeSAPI.String():
		return newSAPINarrator(config)

	case EngineTypeAVFoundation.String():
		return newAVFoundationNarrator(config)

	default:
		return nil, fmt.Errorf("unsupported TTS engine type: %s", config.Type)
	}
}

// bestEngine returns Google when credentials exist, then the speech engine
// built into the OS, then eSpeak, then the mock.
func bestEngine() EngineType {
	if hasGoogleCredentials() {
		return EngineTypeGoogleClassic
	}
	if e := platformEngine(); e != "" {
		return e
	}
	if _, err := findESpeakExecutable(); err == nil {
		return EngineTypeESpeak
	}
	return EngineTypeMock
}

// GetAvailableEngines returns engines usable on this machine
func GetAvailableEngines() []EngineType {
	engines := []EngineType{EngineTypeMock}

	if _, err := findESpeakExecutable(); err == nil {
		engines = append(engines, EngineTypeESpeak)
	}
	if e := platformEngine(); e != "" {
		engines = append(engines, e)
	}
	if hasGoogleCredentials() {
		engines = append(engines, EngineTypeGoogleClassic)
	}

	return engines
}

// hasGoogleCredentials checks if Google Cloud credentials are available
func hasGoogleCredentials() bool {
	path, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok && path != ""
}
