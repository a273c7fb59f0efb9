package deptree

import (
	"reflect"
	"testing"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name             string
		line             string
		wantName         string
		wantOptional     bool
		wantUnresolvable bool
		wantOK           bool
	}{
		{"Bare", "glibc", "glibc", false, false, true},
		{"UnicodeBranch", "├─glibc", "glibc", false, false, true},
		{"UnicodeNested", "│ │ └─pcre2", "pcre2", false, false, true},
		{"ASCIIBranch", "|-glibc", "glibc", false, false, true},
		{"ASCIILast", "`-glibc", "glibc", false, false, true},
		{"VersionGE", "├─glibc>=2.38", "glibc", false, false, true},
		{"VersionLT", "├─ncurses<7", "ncurses", false, false, true},
		{"VersionEQ", "├─systemd=255", "systemd", false, false, true},
		{"ProviderText", "├─libcrypto.so provides openssl", "libcrypto.so", false, false, true},
		{"DescriptionColon", "└─kmod: module handling", "kmod", false, false, true},
		{"Optional", "├─sudo (optional)", "sudo", true, false, true},
		{"OptionalWithVersion", "├─gtk3>=3.24 (optional)", "gtk3", true, false, true},
		{"OptionalUnresolvable", "└─libfoo.so (optional) [unresolvable]", "libfoo.so", true, true, true},
		{"MandatoryUnresolvable", "└─gone-pkg [unresolvable]", "gone-pkg", false, true, true},
		{"Empty", "", "", false, false, false},
		{"GlyphsOnly", "│ │ ", "", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := classifyLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if e.name != tt.wantName {
				t.Errorf("name = %q, want %q", e.name, tt.wantName)
			}
			if e.optional != tt.wantOptional {
				t.Errorf("optional = %v, want %v", e.optional, tt.wantOptional)
			}
			if e.unresolvable != tt.wantUnresolvable {
				t.Errorf("unresolvable = %v, want %v", e.unresolvable, tt.wantUnresolvable)
			}
		})
	}
}

func TestParse(t *testing.T) {
	raw := `linux
├─coreutils
│ ├─glibc>=2.38
│ └─openssl (optional)
├─glibc
└─kmod: module handling
  └─libfoo.so (optional) [unresolvable]
`

	got := Parse(raw, "linux")

	wantMandatory := []string{"coreutils", "glibc", "kmod"}
	if !reflect.DeepEqual(got.Mandatory, wantMandatory) {
		t.Errorf("Mandatory = %v, want %v", got.Mandatory, wantMandatory)
	}

	wantOptional := []string{"libfoo.so*", "openssl"}
	if !reflect.DeepEqual(got.Optional, wantOptional) {
		t.Errorf("Optional = %v, want %v", got.Optional, wantOptional)
	}
}

func TestParseExcludesSelf(t *testing.T) {
	raw := "bash\n├─glibc\n├─bash\n└─readline\n"

	got := Parse(raw, "bash")

	want := []string{"glibc", "readline"}
	if !reflect.DeepEqual(got.Mandatory, want) {
		t.Errorf("Mandatory = %v, want %v", got.Mandatory, want)
	}
}

func TestParseDeduplicates(t *testing.T) {
	raw := "a\n├─glibc\n│ └─glibc\n└─glibc>=2.0\n"

	got := Parse(raw, "a")

	if !reflect.DeepEqual(got.Mandatory, []string{"glibc"}) {
		t.Errorf("Mandatory = %v, want [glibc]", got.Mandatory)
	}
}

func TestParseEmptyInput(t *testing.T) {
	got := Parse("", "a")

	if len(got.Mandatory) != 0 || len(got.Optional) != 0 {
		t.Errorf("Parse(\"\") = %+v, want empty sets", got)
	}
}

func TestParseList(t *testing.T) {
	raw := `firefox
glibc>=2.38
gtk3
libnotify (optional)
gone.so (optional) [unresolvable]
dbus
`

	got := ParseList(raw, "firefox")

	want := []string{"dbus", "glibc", "gtk3", "libnotify"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseList = %v, want %v", got, want)
	}
}
