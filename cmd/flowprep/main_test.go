package main

import (
	"testing"

	"flowprep/internal/config"
	"flowprep/internal/metrics/datadog"
	"flowprep/internal/metrics/prompush"
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		m       config.Metrics
		wantNil bool
		wantErr bool
		check   func(t *testing.T, b any)
	}{
		{name: "disabled", m: config.Metrics{}, wantNil: true},
		{name: "none", m: config.Metrics{Backend: "none"}, wantNil: true},
		{
			name: "prometheus",
			m:    config.Metrics{Backend: "prometheus", PushgatewayURL: "http://localhost:9091"},
			check: func(t *testing.T, b any) {
				if _, ok := b.(*prompush.Backend); !ok {
					t.Fatalf("backend = %T, want *prompush.Backend", b)
				}
			},
		},
		{
			name: "datadog",
			m:    config.Metrics{Backend: "datadog", DatadogAddr: "127.0.0.1:8125"},
			check: func(t *testing.T, b any) {
				if _, ok := b.(*datadog.Backend); !ok {
					t.Fatalf("backend = %T, want *datadog.Backend", b)
				}
			},
		},
		{name: "datadog without addr", m: config.Metrics{Backend: "datadog"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := newBackend(tt.m, "job")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (b == nil) != tt.wantNil {
				t.Fatalf("backend = %v, wantNil %v", b, tt.wantNil)
			}
			if tt.check != nil {
				tt.check(t, b)
			}
		})
	}
}

func TestSeedString(t *testing.T) {
	if got := seedString(nil); got != "random" {
		t.Fatalf("seedString(nil) = %q", got)
	}
	s := uint64(42)
	if got := seedString(&s); got != "42" {
		t.Fatalf("seedString(42) = %q", got)
	}
}
