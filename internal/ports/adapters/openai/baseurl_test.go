package openai

import "testing"

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name         string
		baseURL      string
		allowedHosts []string
		wantErr      bool
	}{
		{
			name:    "empty falls back to default",
			baseURL: "",
		},
		{
			name:    "default host with version path",
			baseURL: "https://api.openai.com/v1/",
		},
		{
			name:    "reject non-absolute URL",
			baseURL: "api.openai.com/v1",
			wantErr: true,
		},
		{
			name:    "reject http",
			baseURL: "http://api.openai.com/v1",
			wantErr: true,
		},
		{
			name:    "reject unknown host by default",
			baseURL: "https://evil.example/v1",
			wantErr: true,
		},
		{
			name:         "allow configured host with port",
			baseURL:      "https://gateway.internal:8443/openai/v1",
			allowedHosts: []string{"https://gateway.internal:8443/"},
		},
		{
			name:    "bare default host gets version root",
			baseURL: "https://api.openai.com",
		},
		{
			name:    "reject endpoint path",
			baseURL: "https://api.openai.com/v1/moderations",
			wantErr: true,
		},
		{
			name:    "reject endpoint path with trailing slash",
			baseURL: "https://api.openai.com/v1/chat/completions/",
			wantErr: true,
		},
		{
			name:    "reject userinfo",
			baseURL: "https://user:pw@api.openai.com/v1",
			wantErr: true,
		},
		{
			name:    "reject fragment",
			baseURL: "https://api.openai.com/v1#x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.baseURL, tt.allowedHosts)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalizeAllowedHosts_DefaultWhenEmpty(t *testing.T) {
	out := normalizeAllowedHosts([]string{" ", "https://", "http://"})
	if len(out) != len(defaultAllowedHosts) {
		t.Fatalf("expected default allowed hosts, got %v", out)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := map[string]string{
		"":                                "https://api.openai.com/v1",
		"  https://api.openai.com/v1/  ":  "https://api.openai.com/v1",
		"https://api.openai.com":          "https://api.openai.com/v1",
		"https://api.openai.com/":         "https://api.openai.com/v1",
		"https://gateway.internal/openai": "https://gateway.internal/openai",
	}
	for in, want := range tests {
		if got := normalizeBaseURL(in); got != want {
			t.Fatalf("normalizeBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}
