package cli

import (
	"reflect"
	"testing"
	"time"

	"github.com/pacscope/pacscope/pkg/collect"
	"github.com/pacscope/pacscope/pkg/pkggraph"
	"github.com/pacscope/pacscope/pkg/snapshot"
)

func TestParseSelectionFlags(t *testing.T) {
	sel, err := parseSelectionFlags(collectOpts{selection: "first:10"})
	if err != nil {
		t.Fatalf("parseSelectionFlags: %v", err)
	}
	if sel.Mode != collect.ModeFirst || sel.Count != 10 {
		t.Errorf("sel = %+v", sel)
	}

	// An explicit package list wins over --select.
	sel, err = parseSelectionFlags(collectOpts{selection: "first:10", packages: []string{"bash"}})
	if err != nil {
		t.Fatalf("parseSelectionFlags: %v", err)
	}
	if sel.Mode != collect.ModeList || !reflect.DeepEqual(sel.Packages, []string{"bash"}) {
		t.Errorf("sel = %+v", sel)
	}

	if _, err := parseSelectionFlags(collectOpts{selection: "sideways:3"}); err == nil {
		t.Error("invalid selection should error")
	}
}

func TestDependersOf(t *testing.T) {
	g := pkggraph.Assemble(
		[]string{"a", "b", "c"},
		map[string]pkggraph.EdgeSets{
			"a": {DependsOn: []string{"ghost"}},
			"b": {OptionalDependsOn: []string{"ghost*"}},
			"c": {},
		},
		pkggraph.Metadata{},
	)

	got := dependersOf(g, "ghost")
	want := []string{"a", "b (optional)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dependersOf = %v, want %v", got, want)
	}
}

func TestDependersOfUnresolvableOptional(t *testing.T) {
	g := pkggraph.Assemble(
		[]string{"x"},
		map[string]pkggraph.EdgeSets{
			"x": {OptionalDependsOn: []string{"y*"}},
		},
		pkggraph.Metadata{},
	)

	// The synthesized broken node keeps the marker suffix; the referrer
	// must still be found under it.
	nodes := pkggraph.ResolveBroken(g)
	var brokenName string
	for _, n := range nodes {
		if n.Broken {
			brokenName = n.Name
		}
	}
	if brokenName == "" {
		t.Fatal("no broken node synthesized")
	}

	got := dependersOf(g, brokenName)
	want := []string{"x (optional)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dependersOf(%q) = %v, want %v", brokenName, got, want)
	}
}

func TestDescribeSelection(t *testing.T) {
	s := &snapshot.Snapshot{SelectionMode: "all"}
	if got := describeSelection(s); got != "all" {
		t.Errorf("describeSelection = %q", got)
	}

	s = &snapshot.Snapshot{SelectionMode: "first", SelectionParam: "first:10"}
	if got := describeSelection(s); got != "first:10" {
		t.Errorf("describeSelection = %q", got)
	}
}

func TestFirstNonZero(t *testing.T) {
	if got := firstNonZero(0, 0, 7); got != 7 {
		t.Errorf("firstNonZero = %d, want 7", got)
	}
	if got := firstNonZero(); got != 0 {
		t.Errorf("firstNonZero() = %d, want 0", got)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	if got := formatRelativeTime(time.Now().Add(-30 * time.Minute)); got != "30m ago" {
		t.Errorf("formatRelativeTime = %q", got)
	}
	if got := formatRelativeTime(time.Now().Add(-48 * time.Hour)); got != "2d ago" {
		t.Errorf("formatRelativeTime = %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("123e4567-e89b-12d3"); got != "123e4567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("plain"); got != "plain" {
		t.Errorf("shortID = %q", got)
	}
}
