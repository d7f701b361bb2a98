package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	ckerrors "github.com/matzehuels/ckanindex/pkg/errors"
	"github.com/matzehuels/ckanindex/pkg/integrations/ckan/ckantest"
	pkgio "github.com/matzehuels/ckanindex/pkg/io"
)

func upstream(t *testing.T) *ckantest.Server {
	t.Helper()
	srv := ckantest.NewServer(t)
	srv.AddOrganization("cabinet-office", ckantest.Packages("cabinet-office", 3)...)
	srv.AddOrganization("ministry-of-justice", ckantest.Packages("ministry-of-justice", 2)...)
	srv.AddOrganization("ministry-of-defence")
	return srv
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(envBaseURL, "")

	var out bytes.Buffer
	old := stdout
	stdout = &out
	defer func() { stdout = old }()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"orgs", "packages", "crawl", "inspect", "serve", "config", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestOrgsList(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "--base-url", srv.BaseURL(), "orgs", "list")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"cabinet-office", "ministry-of-justice", "ministry-of-defence"}
	if got := lines(out); !slices.Equal(got, want) {
		t.Errorf("orgs list = %v, want %v", got, want)
	}
}

func TestOrgsSearch(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "--base-url", srv.BaseURL(), "orgs", "search", "minstry")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ministry-of-justice", "ministry-of-defence"}
	if got := lines(out); !slices.Equal(got, want) {
		t.Errorf("orgs search = %v, want %v", got, want)
	}
}

func TestOrgsShowSuggestsOnTypo(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "--base-url", srv.BaseURL(), "orgs", "show", "minstry")
	if !ckerrors.IsOrganizationNotFound(err) {
		t.Fatalf("err = %v, want organization not found", err)
	}
	if !strings.Contains(out, "Did you mean") || !strings.Contains(out, "ministry-of-justice") {
		t.Errorf("output lacks suggestions:\n%s", out)
	}
}

func TestOrgsShow(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "--base-url", srv.BaseURL(), "orgs", "show", "cabinet-office")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cabinet-office-id") || !strings.Contains(out, "crawl cabinet-office") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPackagesResources(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "--base-url", srv.BaseURL(), "packages", "resources", "cabinet-office-000")
	if err != nil {
		t.Fatal(err)
	}
	idx, err := pkgio.ReadJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("output is not an index: %v\n%s", err, out)
	}
	rs := idx["cabinet-office-000"]
	if len(rs) != 2 || rs[0].FileID != "cabinet-office-000-r1" {
		t.Errorf("resources = %+v", rs)
	}
}

func TestPackagesListByOrganization(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "--base-url", srv.BaseURL(), "packages", "list", "--org", "ministry-of-justice")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ministry-of-justice-000", "ministry-of-justice-001"}
	if got := lines(out); !slices.Equal(got, want) {
		t.Errorf("packages list = %v, want %v", got, want)
	}
}

func TestCrawlToFileThenInspect(t *testing.T) {
	srv := upstream(t)
	path := filepath.Join(t.TempDir(), "cabinet-office.json")

	out, err := execute(t, "--base-url", srv.BaseURL(), "crawl", "cabinet-office", "-o", path, "--page-size", "2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "3 packages") || !strings.Contains(out, path) {
		t.Errorf("crawl output:\n%s", out)
	}
	if starts := srv.Starts(); !slices.Equal(starts, []int{0, 2}) {
		t.Errorf("page starts = %v, want [0 2]", starts)
	}

	idx, err := pkgio.ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 3 || idx.ResourceCount() != 6 {
		t.Errorf("exported index = %d packages, %d resources", idx.Len(), idx.ResourceCount())
	}

	out, err = execute(t, "inspect", path, "--list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"3 packages", "6 resources", "CSV", "cabinet-office-002 (2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestCrawlBoundedCSVToStdout(t *testing.T) {
	srv := upstream(t)
	out, err := execute(t, "--base-url", srv.BaseURL(), "crawl", "ministry-of-justice", "--mode", "bounded", "--format", "csv")
	if err != nil {
		t.Fatal(err)
	}
	got := lines(out)
	if len(got) != 5 || !strings.HasPrefix(got[0], "package,file_id,") {
		t.Errorf("csv output:\n%s", out)
	}
}

func TestCrawlFormatFromExtension(t *testing.T) {
	srv := upstream(t)
	path := filepath.Join(t.TempDir(), "moj.csv")
	if _, err := execute(t, "--base-url", srv.BaseURL(), "crawl", "ministry-of-justice", "-o", path); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "package,file_id,") {
		t.Errorf("file is not CSV: %q", b)
	}
}

func TestCrawlErrors(t *testing.T) {
	srv := upstream(t)
	srv.SetCount("cabinet-office", 5000)

	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{"unknown mode", []string{"crawl", "cabinet-office", "--mode", "partial"}, func(err error) bool { return err != nil }},
		{"unknown format", []string{"crawl", "cabinet-office", "--format", "xml"}, func(err error) bool { return err != nil }},
		{"unknown org", []string{"crawl", "zzzz-nothing"}, ckerrors.IsOrganizationNotFound},
		{"too large", []string{"crawl", "cabinet-office", "--mode", "bounded"}, func(err error) bool {
			return ckerrors.Is(err, ckerrors.ErrCodeResultTooLarge)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"--base-url", srv.BaseURL()}, tt.args...)...)
			if !tt.check(err) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckanindex.toml")

	if _, err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := execute(t, "--config", path, "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}

	out, err := execute(t, "--config", path, "--base-url", "https://ckan.example.org/api/3/action", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `base_url = "https://ckan.example.org/api/3/action"`) {
		t.Errorf("config show:\n%s", out)
	}
}
