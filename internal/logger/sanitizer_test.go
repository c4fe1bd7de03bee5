package logger

import (
	"errors"
	"testing"
)

func TestSanitizer_Sanitize(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "password",
			input:    "login with password=secret123",
			expected: "login with password=***",
		},
		{
			name:     "oauth refresh token in query",
			input:    "POST /token?refresh_token=1//0abc&grant_type=refresh_token",
			expected: "POST /token?refresh_token=***&grant_type=refresh_token",
		},
		{
			name:     "bearer token",
			input:    "Authorization: Bearer ya29.a0Af",
			expected: "Authorization: bearer ***",
		},
		{
			name:     "s3 presigned signature",
			input:    "GET /bucket/key?X-Amz-Credential=AKIA/2024&X-Amz-Signature=deadbeef",
			expected: "GET /bucket/key?X-Amz-Credential=***&X-Amz-Signature=***",
		},
		{
			name:     "userinfo in uri",
			input:    "open s3://admin:hunter2@minio:9000/data",
			expected: "open s3://***@minio:9000/data",
		},
		{
			name:     "hdfs path untouched",
			input:    "list hdfs://nn:8020/user/alice/_tmp",
			expected: "list hdfs://nn:8020/user/alice/_tmp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.expected {
				t.Errorf("Sanitize() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitizer_SanitizeArgs(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name     string
		input    []any
		expected []any
	}{
		{
			name:     "sensitive key long value",
			input:    []any{"root", "/data", "secret_key", "wJalrXUtnFEMI"},
			expected: []any{"root", "/data", "secret_key", "w***I"},
		},
		{
			name:     "sensitive key short value",
			input:    []any{"token", "abcdef"},
			expected: []any{"token", "a***"},
		},
		{
			name:     "sensitive key tiny value",
			input:    []any{"password", "ab"},
			expected: []any{"password", "***"},
		},
		{
			name:     "error value with secret",
			input:    []any{"error", errors.New("denied: access_token=xyz")},
			expected: []any{"error", "denied: access_token=***"},
		},
		{
			name:     "non-string values kept",
			input:    []any{"matched", 12, "auth", 3},
			expected: []any{"matched", 12, "auth", 3},
		},
		{
			name:     "odd count",
			input:    []any{"path", "/a", "dangling"},
			expected: []any{"path", "/a", "dangling"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.SanitizeArgs(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("arg[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSanitizer_DoesNotMutateInput(t *testing.T) {
	s := NewSanitizer()
	in := []any{"token", "abcdefghij"}
	s.SanitizeArgs(in)
	if in[1] != "abcdefghij" {
		t.Errorf("input mutated: %v", in)
	}
}

func TestSanitizer_AddRule(t *testing.T) {
	s := NewSanitizer()

	if err := s.AddRule(`krb5cc_\d+`, "krb5cc_***"); err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}
	if got := s.Sanitize("ticket /tmp/krb5cc_1000"); got != "ticket /tmp/krb5cc_***" {
		t.Errorf("Sanitize() = %q", got)
	}

	if err := s.AddRule(`[`, "x"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
