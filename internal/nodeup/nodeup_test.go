package nodeup

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/upkeep-win/upkeep/internal/winget"
)

const distIndex = `[
  {"version": "v24.1.0", "lts": false},
  {"version": "v22.9.0", "lts": "Jod"},
  {"version": "v22.8.0", "lts": "Jod"},
  {"version": "v20.17.0", "lts": "Iron"}
]`

func distServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, distIndex)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLatestLTSSkipsCurrentReleases(t *testing.T) {
	srv := distServer(t)
	r := New(nil, nil, srv.URL, "")

	version, err := r.latestLTS()
	if err != nil {
		t.Fatalf("latestLTS: %v", err)
	}
	// Newest-first index: v24 is current, the first LTS line wins.
	if version != "v22.9.0" {
		t.Errorf("version = %q, want v22.9.0", version)
	}
}

func TestLatestLTSNoLTSEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"version": "v24.1.0", "lts": false}]`)
	}))
	defer srv.Close()

	r := New(nil, nil, srv.URL, "")
	if _, err := r.latestLTS(); err == nil {
		t.Fatal("expected an error for an index without LTS lines")
	}
}

func TestLatestLTSBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := New(nil, nil, srv.URL, "")
	if _, err := r.latestLTS(); err == nil {
		t.Fatal("expected an error for a non-200 index response")
	}
}

func TestUpdateVersionManagerNodeHappyPath(t *testing.T) {
	srv := distServer(t)

	var commands []string
	exec := func(name string, args []string) (string, string, int, error) {
		cmd := name + " " + strings.Join(args, " ")
		commands = append(commands, cmd)
		if cmd == "node --version" {
			return "v22.9.0\n", "", 0, nil
		}
		return "ok", "", 0, nil
	}

	r := New(exec, nil, srv.URL, "")
	steps := r.UpdateVersionManagerNode()

	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d: %+v", len(steps), steps)
	}
	for _, step := range steps {
		if !step.OK {
			t.Errorf("step %q failed: %s", step.Name, step.Err)
		}
	}

	want := []string{
		"nvm root",
		"nvm install 22.9.0",
		"nvm use 22.9.0",
		"node --version",
	}
	if len(commands) != len(want) {
		t.Fatalf("commands = %v", commands)
	}
	for i, cmd := range want {
		if commands[i] != cmd {
			t.Errorf("commands[%d] = %q, want %q", i, commands[i], cmd)
		}
	}
}

func TestUpdateVersionManagerNodeStopsWithoutNvm(t *testing.T) {
	calls := 0
	exec := func(name string, args []string) (string, string, int, error) {
		calls++
		return "", "nvm: command not found", 1, nil
	}

	r := New(exec, nil, "http://unused.invalid", "")
	steps := r.UpdateVersionManagerNode()

	if calls != 1 {
		t.Errorf("expected only the locate step to run, got %d calls", calls)
	}
	if len(steps) != 1 || steps[0].OK {
		t.Fatalf("expected a single failed step, got %+v", steps)
	}
	if !strings.Contains(steps[0].Err, "exited with code 1") {
		t.Errorf("step error = %q", steps[0].Err)
	}
}

func TestUpdateSystemNodeWingetSuccess(t *testing.T) {
	var wingetArgs []string
	exec := func(name string, args []string) (string, string, int, error) {
		wingetArgs = args
		return "", "", 0, nil
	}

	wg := winget.NewClient(exec, "winget", t.TempDir())
	r := New(exec, wg, "http://unused.invalid", "OpenJS.NodeJS.LTS")
	steps := r.UpdateSystemNode()

	last := steps[len(steps)-1]
	if last.Name != "upgrade via winget" || !last.OK {
		t.Fatalf("unexpected final step: %+v", last)
	}
	joined := strings.Join(wingetArgs, " ")
	if !strings.Contains(joined, "--id OpenJS.NodeJS.LTS") {
		t.Errorf("winget args = %v", wingetArgs)
	}
	// Success must not fall through to the direct MSI install.
	for _, step := range steps {
		if step.Name == "direct MSI install" {
			t.Error("direct install ran despite winget success")
		}
	}
}

func TestUpdateSystemNodeFallsBackToDirectInstall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/index.json" {
			fmt.Fprint(w, distIndex)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	exec := func(name string, args []string) (string, string, int, error) {
		return "", "winget failed", 1, nil
	}

	wg := winget.NewClient(exec, "winget", t.TempDir())
	r := New(exec, wg, srv.URL+"/index.json", "OpenJS.NodeJS.LTS")
	steps := r.UpdateSystemNode()

	last := steps[len(steps)-1]
	if last.Name != "direct MSI install" {
		t.Fatalf("expected the direct install fallback, got %+v", last)
	}
	// The MSI download 404s in this test; the step must report that rather
	// than succeed.
	if last.OK {
		t.Error("direct install reported success without an MSI")
	}
}
