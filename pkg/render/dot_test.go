package render

import (
	"strings"
	"testing"

	"github.com/pacscope/pacscope/pkg/pkggraph"
)

func testLookup() (*pkggraph.Graph, func(string) (*pkggraph.PackageRecord, bool)) {
	g := pkggraph.Assemble(
		[]string{"bash", "glibc"},
		map[string]pkggraph.EdgeSets{
			"bash":  {DependsOn: []string{"glibc"}, OptionalDependsOn: []string{"bash-completion"}},
			"glibc": {RequiredBy: []string{"bash"}},
		},
		pkggraph.Metadata{
			Versions: map[string]string{"bash": "5.2-1", "glibc": "2.39-1"},
			Explicit: map[string]bool{"bash": true},
		},
	)
	return g, g.Record
}

func TestLabeler(t *testing.T) {
	g, _ := testLookup()
	bash, _ := g.Record("bash")
	glibc, _ := g.Record("glibc")

	if got := Labeler(bash, glibc); got != EdgeTypeDepends {
		t.Errorf("mandatory edge type = %q", got)
	}
	if got := Labeler(bash, &pkggraph.PackageRecord{Name: "bash-completion"}); got != EdgeTypeOptional {
		t.Errorf("optional edge type = %q", got)
	}
	if got := Labeler(bash, nil); got != EdgeTypeBroken {
		t.Errorf("missing target edge type = %q", got)
	}
	if got := Labeler(bash, &pkggraph.PackageRecord{Name: "x", Broken: true}); got != EdgeTypeBroken {
		t.Errorf("broken target edge type = %q", got)
	}
}

func TestToDOT(t *testing.T) {
	g, lookup := testLookup()
	sg := pkggraph.ExtractSubgraph(g, "bash", pkggraph.DirectionForward, Labeler)

	dot := ToDOT(sg, lookup)

	if !strings.HasPrefix(dot, "digraph pacscope {") {
		t.Errorf("missing digraph header:\n%s", dot)
	}
	if !strings.Contains(dot, `"bash" -> "glibc"`) {
		t.Errorf("missing edge:\n%s", dot)
	}
	// Explicit packages are emphasized.
	if !strings.Contains(dot, "penwidth=2") {
		t.Errorf("explicit node not emphasized:\n%s", dot)
	}
}

func TestToDOTBrokenNode(t *testing.T) {
	g := pkggraph.Assemble(
		[]string{"app"},
		map[string]pkggraph.EdgeSets{"app": {DependsOn: []string{"ghost"}}},
		pkggraph.Metadata{},
	)
	sg := pkggraph.ExtractSubgraph(g, "app", pkggraph.DirectionForward, Labeler)

	dot := ToDOT(sg, g.Record)

	if !strings.Contains(dot, `"ghost"`) {
		t.Errorf("dangling target missing:\n%s", dot)
	}
	if !strings.Contains(dot, "color=red") {
		t.Errorf("dangling target not marked:\n%s", dot)
	}
}
