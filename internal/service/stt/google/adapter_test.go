package google

import (
	"errors"
	"testing"

	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sign-stream-service/internal/service/stt"
)

func TestEncodingOf(t *testing.T) {
	tests := []struct {
		input    string
		expected speechpb.RecognitionConfig_AudioEncoding
	}{
		{"LINEAR16", speechpb.RecognitionConfig_LINEAR16},
		{"FLAC", speechpb.RecognitionConfig_FLAC},
		{"MULAW", speechpb.RecognitionConfig_MULAW},
		{"OGG_OPUS", speechpb.RecognitionConfig_OGG_OPUS},
		{"WEBM_OPUS", speechpb.RecognitionConfig_WEBM_OPUS},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := encodingOf(tt.input)
			if err != nil {
				t.Fatalf("encodingOf(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("encodingOf(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEncodingOf_Unsupported(t *testing.T) {
	for _, name := range []string{"", "AMR", "invalid"} {
		if _, err := encodingOf(name); !errors.Is(err, stt.ErrProviderRejectedConfig) {
			t.Errorf("encodingOf(%q) error = %v, want ErrProviderRejectedConfig", name, err)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.InvalidArgument, stt.ErrProviderRejectedConfig},
		{codes.OutOfRange, stt.ErrProviderRejectedConfig},
		{codes.Unavailable, stt.ErrProviderUnavailable},
		{codes.Unauthenticated, stt.ErrProviderUnavailable},
		{codes.PermissionDenied, stt.ErrProviderUnavailable},
		{codes.DeadlineExceeded, stt.ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := classify(status.Error(tt.code, "boom"))
			if !errors.Is(err, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.code, err, tt.want)
			}
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	orig := status.Error(codes.Internal, "boom")
	if err := classify(orig); errors.Is(err, stt.ErrProviderRejectedConfig) || errors.Is(err, stt.ErrProviderUnavailable) {
		t.Errorf("internal errors should pass through unchanged, got %v", err)
	}
}

func TestNewProvider_RequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := NewProvider(t.Context()); !errors.Is(err, stt.ErrProviderUnavailable) {
		t.Errorf("NewProvider without credentials = %v, want ErrProviderUnavailable", err)
	}
}
