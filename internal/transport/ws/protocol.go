package ws

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"sign-stream-service/internal/models"
)

// Client message types.
const (
	msgStartStreaming = "start-streaming"
	msgAudioData      = "audio-data"
	msgStopStreaming  = "stop-streaming"
	msgDisconnect     = "disconnect"
)

var errEmptyAudio = errors.New("ws: audio-data message carries no audio")

// clientEnvelope is the JSON shape of every text-frame client message.
// Config fields are read only for start-streaming, audio only for
// audio-data.
type clientEnvelope struct {
	Type           string `json:"type"`
	Encoding       string `json:"encoding,omitempty"`
	SampleRateHz   int    `json:"sampleRate,omitempty"`
	LanguageCode   string `json:"languageCode,omitempty"`
	InterimResults *bool  `json:"interimResults,omitempty"`
	Audio          string `json:"audio,omitempty"`
}

func parseClientMessage(data []byte) (clientEnvelope, error) {
	var env clientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return clientEnvelope{}, fmt.Errorf("ws: malformed message: %w", err)
	}
	if env.Type == "" {
		return clientEnvelope{}, errors.New("ws: message missing type")
	}
	return env, nil
}

// streamConfig builds the bridge config from a start-streaming message.
// Interim results default to on when the client leaves the field out.
func (e clientEnvelope) streamConfig() models.StreamConfig {
	interim := true
	if e.InterimResults != nil {
		interim = *e.InterimResults
	}
	return models.StreamConfig{
		Encoding:       e.Encoding,
		SampleRateHz:   e.SampleRateHz,
		LanguageCode:   e.LanguageCode,
		InterimResults: interim,
	}
}

// decodeAudio decodes the base64 audio of an audio-data text message.
// Binary frames skip this path entirely.
func (e clientEnvelope) decodeAudio() ([]byte, error) {
	if e.Audio == "" {
		return nil, errEmptyAudio
	}
	chunk, err := base64.StdEncoding.DecodeString(e.Audio)
	if err != nil {
		return nil, fmt.Errorf("ws: bad audio encoding: %w", err)
	}
	return chunk, nil
}
