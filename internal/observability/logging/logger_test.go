package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestContextualLoggers(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	componentLog := WithComponent("ws")
	componentLog.Info().Msg("component log")
	sessionLog := WithSession("sess-1")
	sessionLog.Info().Msg("session log")
	streamLog := WithStream("sess-2", "google")
	streamLog.Info().Msg("stream log")

	out := buf.String()
	for _, want := range []string{
		`"component":"ws"`,
		`"sessionId":"sess-1"`,
		`"sessionId":"sess-2"`,
		`"sttProvider":"google"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s in:\n%s", want, out)
		}
	}
}
