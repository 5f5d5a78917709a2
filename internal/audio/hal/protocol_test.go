package hal

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestDecodeResponse(t *testing.T) {
	payload, err := cbor.Marshal(busForContextResult{Bus: 3})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		env     responseEnvelope
		wantErr error
	}{
		{
			name: "ok with result",
			env:  responseEnvelope{Code: codeOK, Result: payload},
		},
		{
			name: "ok without result",
			env:  responseEnvelope{Code: codeOK},
		},
		{
			name:    "unsupported",
			env:     responseEnvelope{Code: codeUnsupported},
			wantErr: ErrUnsupported,
		},
		{
			name:    "already registered",
			env:     responseEnvelope{Code: codeAlreadyRegistered},
			wantErr: ErrAlreadyRegistered,
		},
		{
			name:    "failed with message",
			env:     responseEnvelope{Code: codeFailed, Error: "no such zone"},
			wantErr: ErrRequestFailed,
		},
		{
			name:    "unknown code",
			env:     responseEnvelope{Code: 99},
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res busForContextResult
			err := decodeResponse(tt.env, &res)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("decodeResponse() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("decodeResponse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeResponseResultRoundTrip(t *testing.T) {
	payload, err := cbor.Marshal(DeviceConfiguration{
		RoutingConfig:           ConfigurableEngineRouting,
		UseCoreAudioRouting:     true,
		UseCarVolumeGroupMuting: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	var cfg DeviceConfiguration
	if err := decodeResponse(responseEnvelope{Code: codeOK, Result: payload}, &cfg); err != nil {
		t.Fatalf("decodeResponse() error = %v", err)
	}
	if cfg.RoutingConfig != ConfigurableEngineRouting || !cfg.UseCoreAudioRouting || !cfg.UseCarVolumeGroupMuting {
		t.Errorf("decoded config = %+v", cfg)
	}
}

func TestDecodeResponseMalformedResult(t *testing.T) {
	var cfg DeviceConfiguration
	env := responseEnvelope{Code: codeOK, Result: []byte{0xff, 0xff}}
	if err := decodeResponse(env, &cfg); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("decodeResponse() error = %v, want ErrInvalidResponse", err)
	}
}
