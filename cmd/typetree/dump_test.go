package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/npratt/typetree/internal/testutil"
	"github.com/npratt/typetree/internal/tui"
	"github.com/npratt/typetree/internal/typegraph"
)

func TestRunDump_Text(t *testing.T) {
	var buf bytes.Buffer
	opts := dumpOptions{Depth: 2, Render: tui.RenderOptions{IndentWidth: 2}}

	if err := runDump(context.Background(), &buf, testutil.SelfSource(), []string{"demo.Self"}, opts); err != nil {
		t.Fatalf("runDump: %v", err)
	}

	want := strings.Join([]string{
		"▾ demo.Self",
		"  ▾ Clone(): *Self",
		"    ▸ Clone(): *Self",
		"    • Len(): int",
		"  • Len(): int",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestRunDump_JSON(t *testing.T) {
	var buf bytes.Buffer
	opts := dumpOptions{Depth: 1, Format: formatJSON}

	if err := runDump(context.Background(), &buf, testutil.SelfSource(), []string{"demo.Self"}, opts); err != nil {
		t.Fatalf("runDump: %v", err)
	}

	var got []dumpNode
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 1 {
		t.Fatalf("roots = %d, want 1", len(got))
	}
	root := got[0]
	if root.Label != "demo.Self" || root.Path != "0" {
		t.Errorf("root = %+v", root)
	}
	if len(root.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(root.Children))
	}
	if root.Children[0].Path != "0.child_0" || root.Children[0].Label != "Clone(): *Self" {
		t.Errorf("first child = %+v", root.Children[0])
	}
	if root.Children[0].Children != nil {
		t.Error("depth 1 should not expand grandchildren")
	}
}

func TestRunDump_Errors(t *testing.T) {
	var buf bytes.Buffer
	opts := dumpOptions{Depth: 2}

	err := runDump(context.Background(), &buf, testutil.SelfSource(), []string{"demo.Missing"}, opts)
	if !errors.Is(err, typegraph.ErrTypeNotFound) {
		t.Errorf("err = %v, want ErrTypeNotFound", err)
	}

	boom := errors.New("boom")
	src := testutil.FakeSource{"demo.Outer": &testutil.FakeType{TypeName: "demo.Outer", List: []typegraph.Method{
		{Name: "Bad", Next: &testutil.FakeType{TypeName: "demo.Bad", Err: boom}},
		{Name: "Ok"},
	}}}
	buf.Reset()
	err = runDump(context.Background(), &buf, src, []string{"demo.Outer"}, opts)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want it to wrap boom", err)
	}
	if !strings.Contains(buf.String(), "Ok()") {
		t.Errorf("tree should still be written on expansion errors:\n%s", buf.String())
	}
}

func TestRunDump_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := runDump(ctx, &buf, testutil.SelfSource(), []string{"demo.Self"}, dumpOptions{Depth: 3})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunDump_YAML(t *testing.T) {
	var buf bytes.Buffer
	opts := dumpOptions{Depth: 1, Format: formatYAML}

	if err := runDump(context.Background(), &buf, testutil.SelfSource(), []string{"demo.Self"}, opts); err != nil {
		t.Fatalf("runDump: %v", err)
	}

	var got []dumpNode
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if len(got) != 1 || len(got[0].Children) != 2 {
		t.Fatalf("tree = %+v", got)
	}
	if got[0].Children[1].Label != "Len(): int" || got[0].Children[1].Path != "0.child_1" {
		t.Errorf("second child = %+v", got[0].Children[1])
	}
}

func TestRunDump_SVG(t *testing.T) {
	var buf bytes.Buffer
	opts := dumpOptions{Depth: 1, Format: formatSVG, Render: tui.RenderOptions{IndentWidth: 2}}

	if err := runDump(context.Background(), &buf, testutil.SelfSource(), []string{"demo.Self"}, opts); err != nil {
		t.Fatalf("runDump: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "Clone") {
		t.Errorf("unexpected svg output:\n%s", out)
	}
}

func TestRunDump_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := runDump(context.Background(), &buf, testutil.SelfSource(), []string{"demo.Self"},
		dumpOptions{Depth: 1, Format: "xml"})
	if err == nil || !strings.Contains(err.Error(), `unknown format "xml"`) {
		t.Errorf("err = %v, want unknown format", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}
