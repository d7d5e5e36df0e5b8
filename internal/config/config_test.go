package config

import (
	"errors"
	"testing"
	"time"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid",
			cfg:  Config{Addr: DefaultAddr, ModelName: DefaultModelName},
		},
		{
			name:    "empty addr",
			cfg:     Config{Addr: "  ", ModelName: DefaultModelName},
			wantErr: ErrInvalidAddr,
		},
		{
			name:    "empty model",
			cfg:     Config{Addr: DefaultAddr},
			wantErr: ErrInvalidModelName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPolicyIsValid(t *testing.T) {
	if err := DefaultPolicy("Venus Total Beauty").Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}

func TestPolicyValidate(t *testing.T) {
	base := DefaultPolicy("shop")

	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr error
	}{
		{
			name:    "zero faq limit",
			mutate:  func(p *Policy) { p.FAQLimit = 0 },
			wantErr: ErrInvalidCap,
		},
		{
			name:    "negative knowledge budget",
			mutate:  func(p *Policy) { p.KnowledgeMaxRunes = -1 },
			wantErr: ErrInvalidCap,
		},
		{
			name:    "zero adapter timeout",
			mutate:  func(p *Policy) { p.AdapterTimeout = 0 },
			wantErr: ErrInvalidCap,
		},
		{
			name:    "zero topK",
			mutate:  func(p *Policy) { p.Retrieval.TopK = 0 },
			wantErr: ErrInvalidFusion,
		},
		{
			name:    "min score above one",
			mutate:  func(p *Policy) { p.Retrieval.MinScore = 1.5 },
			wantErr: ErrInvalidFusion,
		},
		{
			name: "both weights zero",
			mutate: func(p *Policy) {
				p.Retrieval.VectorWeight = 0
				p.Retrieval.LexicalWeight = 0
			},
			wantErr: ErrInvalidFusion,
		},
		{
			name:    "negative weight",
			mutate:  func(p *Policy) { p.Retrieval.LexicalWeight = -0.1 },
			wantErr: ErrInvalidFusion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPolicyTimeoutsBoundAdapters(t *testing.T) {
	p := DefaultPolicy("shop")
	if p.AdapterTimeout < 500*time.Millisecond {
		t.Errorf("adapter timeout %v too small to be useful", p.AdapterTimeout)
	}
}
