package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidArgument, "random count %d exceeds explicit packages (%d)", 100, 42)

	if err.Code != ErrCodeInvalidArgument {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidArgument)
	}
	if !strings.Contains(err.Error(), "INVALID_ARGUMENT") {
		t.Errorf("Error() = %q, want code prefix", err.Error())
	}
	if !strings.Contains(err.Error(), "100") {
		t.Errorf("Error() = %q, want formatted args", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("exit status 1")
	err := Wrap(ErrCodeToolFailure, cause, "pactree %s", "glibc")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"MatchingCode", New(ErrCodePackageNotFound, "nope"), ErrCodePackageNotFound, true},
		{"DifferentCode", New(ErrCodePackageNotFound, "nope"), ErrCodeInvalidArgument, false},
		{"PlainError", stderrors.New("plain"), ErrCodeInternal, false},
		{"WrappedDeep", Wrap(ErrCodeInternal, New(ErrCodeToolFailure, "inner"), "outer"), ErrCodeInternal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ToolFailure", New(ErrCodeToolFailure, "pactree failed"), false},
		{"InvalidArgument", New(ErrCodeInvalidArgument, "bad count"), true},
		{"PackageNotFound", New(ErrCodePackageNotFound, "missing"), true},
		{"PrerequisiteMissing", New(ErrCodePrerequisiteMissing, "no pactree"), true},
		{"PlainError", stderrors.New("plain"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeFileNotFound, "gone")); got != ErrCodeFileNotFound {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeFileNotFound)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodePackageNotFound, "package not installed: foo")
	if got := UserMessage(err); got != "package not installed: foo" {
		t.Errorf("UserMessage = %q", got)
	}
	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestValidatePacmanPackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Simple", "glibc", false},
		{"WithPlus", "libc++", false},
		{"WithDot", "python3.12", false},
		{"WithAt", "emacs@29", false},
		{"WithUnderscore", "lib_foo", false},
		{"WithDash", "gtk-doc", false},
		{"Empty", "", true},
		{"LeadingDash", "-oops", true},
		{"Traversal", "../etc", true},
		{"Space", "a b", true},
		{"Shell", "a;rm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePacmanPackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePacmanPackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
