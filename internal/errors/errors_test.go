package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestUpError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *UpError
		wantStr string
	}{
		{
			name: "simple error",
			err: &UpError{
				Code:    "TEST_001",
				Message: "test error",
			},
			wantStr: "[TEST_001] test error",
		},
		{
			name: "error with cause",
			err: &UpError{
				Code:    "TEST_002",
				Message: "wrapped error",
				Cause:   errors.New("underlying"),
			},
			wantStr: "[TEST_002] wrapped error: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestUpError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &UpError{
		Code:    "TEST_001",
		Message: "test",
		Cause:   underlying,
	}

	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
}

func TestUpError_WithDetail(t *testing.T) {
	err := New("TEST_001", "test").
		WithDetail("key1", "value1").
		WithDetail("key2", 42)

	if err.Details["key1"] != "value1" {
		t.Errorf("Details[key1] = %v, want value1", err.Details["key1"])
	}
	if err.Details["key2"] != 42 {
		t.Errorf("Details[key2] = %v, want 42", err.Details["key2"])
	}
}

func TestUpError_MarshalJSON(t *testing.T) {
	err := &UpError{
		Code:    "TEST_001",
		Message: "test error",
		Details: map[string]any{"path": "files/app.conf"},
		Cause:   errors.New("underlying"),
	}

	data, jsonErr := json.Marshal(err)
	if jsonErr != nil {
		t.Fatalf("Marshal failed: %v", jsonErr)
	}

	var result map[string]any
	if jsonErr := json.Unmarshal(data, &result); jsonErr != nil {
		t.Fatalf("Unmarshal failed: %v", jsonErr)
	}

	if result["code"] != "TEST_001" {
		t.Errorf("code = %v, want TEST_001", result["code"])
	}
	if result["message"] != "test error" {
		t.Errorf("message = %v, want test error", result["message"])
	}
	if result["cause"] != "underlying" {
		t.Errorf("cause = %v, want underlying", result["cause"])
	}
}

func TestHasCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{
			name: "matching code",
			err:  New(CodeFileNotFound, "not found"),
			code: CodeFileNotFound,
			want: true,
		},
		{
			name: "non-matching code",
			err:  New(CodeFileNotFound, "not found"),
			code: CodeEvalSyntax,
			want: false,
		},
		{
			name: "wrapped UpError",
			err:  fmt.Errorf("outer: %w", New(CodeDurationInvalid, "bad duration")),
			code: CodeDurationInvalid,
			want: true,
		},
		{
			name: "plain error",
			err:  errors.New("plain"),
			code: CodeFileNotFound,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	if got := Code(New(CodePermInvalidSpec, "bad spec")); got != CodePermInvalidSpec {
		t.Errorf("Code() = %q, want %q", got, CodePermInvalidSpec)
	}
	if got := Code(errors.New("plain")); got != "" {
		t.Errorf("Code() = %q, want empty", got)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *UpError
		wantCode string
	}{
		{"input type", EvalInputType(123), CodeEvalInputType},
		{"syntax", EvalSyntax("3 >", "dangling operator"), CodeEvalSyntax},
		{"unbound name", EvalUnboundName("y > 5", "y"), CodeEvalUnboundName},
		{"type mismatch", EvalTypeMismatch("x > 'a'", "int vs string"), CodeEvalTypeMismatch},
		{"file not found", FileNotFound("app.j2", []string{"/a", "/a/files"}), CodeFileNotFound},
		{"perm spec", PermInvalidSpec("u~r", "unknown operator"), CodePermInvalidSpec},
		{"duration", DurationInvalid("soon"), CodeDurationInvalid},
		{"playbook parse", PlaybookParse("up.yml", errors.New("yaml: bad")), CodePlaybookParse},
		{"playbook invalid", PlaybookInvalid("not a sequence"), CodePlaybookInvalid},
		{"run locked", RunLocked("/tmp/.up.lock"), CodeRunLocked},
		{"config missing", ConfigMissingField("logging.level"), CodeConfigMissingField},
		{"config invalid", ConfigInvalidValue("logging.format", "xml", "unknown format"), CodeConfigInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}
