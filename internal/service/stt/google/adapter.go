// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sign-stream-service/internal/models"
	"sign-stream-service/internal/service/stt"
)

// Provider wraps a shared Google Speech client. One client serves all
// sessions; each session gets its own streaming adapter.
type Provider struct {
	client *speech.Client
}

// NewProvider creates the Google STT provider.
// Requires GOOGLE_APPLICATION_CREDENTIALS to be set.
func NewProvider(ctx context.Context) (*Provider, error) {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		return nil, fmt.Errorf("%w: GOOGLE_APPLICATION_CREDENTIALS not set", stt.ErrProviderUnavailable)
	}
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stt.ErrProviderUnavailable, err)
	}
	return &Provider{client: c}, nil
}

// Name implements stt.Provider.
func (p *Provider) Name() string { return "google" }

// NewAdapter returns an unstarted streaming adapter.
func (p *Provider) NewAdapter() stt.Adapter {
	return &Adapter{client: p.client}
}

// Recognize performs a one-shot, non-streaming transcription.
func (p *Provider) Recognize(ctx context.Context, cfg models.StreamConfig, audio []byte) (models.TranscriptEvent, error) {
	enc, err := encodingOf(cfg.Encoding)
	if err != nil {
		return models.TranscriptEvent{}, err
	}

	resp, err := p.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        enc,
			SampleRateHertz: int32(cfg.SampleRateHz),
			LanguageCode:    cfg.LanguageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return models.TranscriptEvent{}, classify(err)
	}

	ev := models.TranscriptEvent{IsFinal: true, Timestamp: time.Now().UnixMilli()}
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		if ev.Text != "" {
			ev.Text += " "
		}
		ev.Text += alt.Transcript
		if float64(alt.Confidence) > ev.Confidence {
			ev.Confidence = float64(alt.Confidence)
		}
	}
	return ev, nil
}

// Close releases the underlying client connection.
func (p *Provider) Close() error {
	return p.client.Close()
}

// Adapter implements stt.Adapter over one Google streaming session.
type Adapter struct {
	client *speech.Client

	mu     sync.Mutex
	stream speechpb.Speech_StreamingRecognizeClient
	cancel context.CancelFunc
	closed bool
}

// Start opens a streaming recognition session, sends the config as the
// first message, and begins the receive loop.
func (a *Adapter) Start(ctx context.Context, cfg models.StreamConfig, cb stt.Callback) error {
	enc, err := encodingOf(cfg.Encoding)
	if err != nil {
		return err
	}

	// The stream context outlives Start; cancellation on Close gives
	// bounded teardown without waiting for a provider-side stream end.
	// The caller's deadline still bounds the open phase: until openDone
	// closes, expiry of ctx cancels the stream.
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	openDone := make(chan struct{})
	defer close(openDone)
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-openDone:
		}
	}()

	stream, err := a.client.StreamingRecognize(streamCtx)
	if err != nil {
		cancel()
		return openError(ctx, err)
	}

	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        enc,
					SampleRateHertz: int32(cfg.SampleRateHz),
					LanguageCode:    cfg.LanguageCode,
				},
				InterimResults: cfg.InterimResults,
			},
		},
	})
	if err != nil {
		cancel()
		return openError(ctx, err)
	}

	a.mu.Lock()
	a.stream = stream
	a.cancel = cancel
	a.mu.Unlock()

	go a.listen(stream, cb)
	return nil
}

// listen receives transcript responses and invokes callbacks in
// provider emission order.
func (a *Adapter) listen(stream speechpb.Speech_StreamingRecognizeClient, cb stt.Callback) {
	for {
		resp, err := stream.Recv()
		if err != nil {
			a.markClosed()
			if err == io.EOF || status.Code(err) == codes.Canceled {
				cb.OnEnded()
			} else {
				cb.OnError(classify(err))
			}
			return
		}

		for _, r := range resp.Results {
			if len(r.Alternatives) == 0 {
				continue
			}
			alt := r.Alternatives[0]
			cb.OnResult(models.TranscriptEvent{
				Text:       alt.Transcript,
				Confidence: float64(alt.Confidence),
				IsFinal:    r.IsFinal,
				Timestamp:  time.Now().UnixMilli(),
			})
		}
	}
}

// SendAudio forwards audio bytes to the provider.
func (a *Adapter) SendAudio(_ context.Context, audio []byte) error {
	a.mu.Lock()
	stream, closed := a.stream, a.closed
	a.mu.Unlock()

	if closed || stream == nil {
		return stt.ErrBridgeClosed
	}
	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	}); err != nil {
		a.markClosed()
		return fmt.Errorf("%w: %v", stt.ErrBridgeClosed, err)
	}
	return nil
}

// Close ends the streaming session. Idempotent.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	stream, cancel := a.stream, a.cancel
	a.mu.Unlock()

	var err error
	if stream != nil {
		err = stream.CloseSend()
	}
	if cancel != nil {
		cancel()
	}
	return err
}

func (a *Adapter) markClosed() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
}

// openError reports a bridge-open failure. A caller deadline that
// expired mid-open is an unavailable provider, not a stream error.
func openError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: bridge open timed out: %v", stt.ErrProviderUnavailable, err)
	}
	return classify(err)
}

// classify maps gRPC status codes onto the bridge error taxonomy.
func classify(err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.OutOfRange:
		return fmt.Errorf("%w: %v", stt.ErrProviderRejectedConfig, err)
	case codes.Unavailable, codes.Unauthenticated, codes.PermissionDenied, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", stt.ErrProviderUnavailable, err)
	default:
		return err
	}
}

// encodingOf maps the session config encoding name onto the provider enum.
func encodingOf(name string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch name {
	case "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			fmt.Errorf("%w: unsupported encoding %q", stt.ErrProviderRejectedConfig, name)
	}
}
