package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/videofonik/vfconsole/pkg/api"
	"github.com/videofonik/vfconsole/pkg/config"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/render"
	"github.com/videofonik/vfconsole/pkg/session"
	"github.com/videofonik/vfconsole/pkg/shell"
	"github.com/videofonik/vfconsole/pkg/tree"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg, png ,json", []string{"svg", "png", "json"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	fs, err := parseRenderFormats("dot,json")
	if err != nil || len(fs) != 2 || fs[0] != render.FormatDOT || fs[1] != render.FormatJSON {
		t.Errorf("parseRenderFormats(dot,json) = %v, %v", fs, err)
	}
	if _, err := parseRenderFormats("svg,gif"); err == nil {
		t.Error("parseRenderFormats(gif) should fail")
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, fallback, want string
	}{
		{"", "p1", "p1"},
		{"out/tree.svg", "p1", "out/tree"},
		{"out/tree.PNG.bak", "p1", "out/tree.PNG.bak"},
		{"tree", "p1", "tree"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.fallback); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.fallback, got, tt.want)
		}
	}
}

func TestSourceBase(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "tour.json")
	layoutFile := filepath.Join(dir, "tour.layout.json")
	for _, p := range []string{project, layoutFile} {
		if err := os.WriteFile(p, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := map[string]string{
		"6650c1d2": "6650c1d2",
		project:    filepath.Join(dir, "tour"),
		layoutFile: filepath.Join(dir, "tour"),
	}
	for source, want := range tests {
		if got := sourceBase(source); got != want {
			t.Errorf("sourceBase(%q) = %q, want %q", source, got, want)
		}
	}
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint bool
		want     string
	}{
		{"unauthorized", vferrors.FromStatus(http.StatusUnauthorized, "Not authenticated"), true, "Not authenticated"},
		{"expired session", fmt.Errorf("token: %w", session.ErrExpired), true, "session expired"},
		{"not found", vferrors.FromStatus(http.StatusNotFound, "Project not found"), false, "Project not found"},
		{"plain", errors.New("disk full"), false, "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := explain(tt.err).Error()
			if !strings.Contains(got, tt.want) {
				t.Errorf("explain() = %q, want it to contain %q", got, tt.want)
			}
			if hint := strings.Contains(got, "auth login"); hint != tt.wantHint {
				t.Errorf("explain() = %q, login hint = %v", got, hint)
			}
		})
	}
}

func TestProjectTable(t *testing.T) {
	out := projectTable([]*tree.Project{
		{ID: "p1", Name: "Tour", Nodes: []*tree.Node{{ID: "n1", Question: "Where?", Answers: []*tree.Node{{ID: "n2", Text: "North"}}}}},
		{ID: "p2", Name: "Onboarding", AllowedDomains: []string{"example.com"}},
	})
	for _, want := range []string{"ID", "Name", "Tour", "Onboarding", "p2"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestReadSecret(t *testing.T) {
	tests := map[string]string{
		"s3cret\n":   "s3cret",
		"s3cret\r\n": "s3cret",
		"s3cret":     "s3cret",
		"":           "",
	}
	for in, want := range tests {
		got, err := readSecret(strings.NewReader(in))
		if err != nil || got != want {
			t.Errorf("readSecret(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a  b\nc", 10); got != "a b c" {
		t.Errorf("whitespace not collapsed: %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q, want abcd…", got)
	}
}

// =============================================================================
// Forms
// =============================================================================

func typeInto(f form, s string) form {
	f, _, _ = f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return f
}

func key(f form, k tea.KeyType) (form, bool) {
	f, _, submitted := f.update(tea.KeyMsg{Type: k})
	return f, submitted
}

func TestFormNavigation(t *testing.T) {
	f := newForm("Sign in",
		formField{Label: "Email"},
		formField{Label: "Password", Secret: true})

	f = typeInto(f, "ana@example.com")
	f, submitted := key(f, tea.KeyEnter)
	if submitted || f.focus != 1 {
		t.Fatalf("enter on first field: focus=%d submitted=%v", f.focus, submitted)
	}
	f = typeInto(f, "s3cret")
	if _, submitted = key(f, tea.KeyEnter); !submitted {
		t.Fatal("enter on last field should submit")
	}

	vals := f.values()
	if vals[0] != "ana@example.com" || vals[1] != "s3cret" {
		t.Errorf("values = %q", vals)
	}
	if strings.Contains(f.view(), "s3cret") {
		t.Error("secret field echoed in view")
	}

	f, _ = key(f, tea.KeyShiftTab)
	f, _ = key(f, tea.KeyShiftTab)
	if f.focus != 1 {
		t.Errorf("focus after wrapping back = %d, want 1", f.focus)
	}
}

func TestDialogForm(t *testing.T) {
	q := dialogForm(shell.Dialog{Kind: shell.QuestionDialog, Action: shell.EditQuestion, Question: "Where?"})
	if len(q.inputs) != 1 || q.values()[0] != "Where?" || q.title != "Edit Question" {
		t.Errorf("question form = %q %q", q.title, q.values())
	}
	a := dialogForm(shell.Dialog{Kind: shell.AnswerDialog, Action: shell.AddAnswer})
	if len(a.inputs) != 2 || a.values()[0] != "" {
		t.Errorf("answer form values = %q", a.values())
	}
}

// =============================================================================
// Interactive shell
// =============================================================================

type memGateway struct {
	project *tree.Project
	added   []api.AnswerInput
}

func (g *memGateway) GetProject(ctx context.Context, id string) (*tree.Project, error) {
	return g.project, nil
}

func (g *memGateway) AddNode(ctx context.Context, projectID string, in api.NodeInput) (*tree.Node, error) {
	return nil, errors.New("not implemented")
}

func (g *memGateway) AddAnswer(ctx context.Context, projectID, nodeID string, in api.AnswerInput) (*tree.Node, error) {
	g.added = append(g.added, in)
	n := g.project.Nodes[0]
	a := &tree.Node{ID: fmt.Sprintf("a%d", len(n.Answers)+1), Text: in.Text}
	n.Answers = append(n.Answers, a)
	return a, nil
}

func runCmd(t *testing.T, m shellModel, cmd tea.Cmd) shellModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(shellModel)
}

func press(m shellModel, k string) (shellModel, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(shellModel), cmd
}

func TestShellModelAddAnswer(t *testing.T) {
	gw := &memGateway{project: &tree.Project{
		ID: "p1", Name: "Tour",
		Nodes: []*tree.Node{{ID: "n1", Question: "Where to?"}},
	}}
	ctx := context.Background()
	m := newShellModel(ctx, shell.New(gw, "p1"))

	m = runCmd(t, m, m.Init())
	if m.busy || len(m.nodes()) != 1 {
		t.Fatalf("after load: busy=%v nodes=%d err=%v", m.busy, len(m.nodes()), m.err)
	}
	if !strings.Contains(m.View(), "Tour") {
		t.Error("view missing project name")
	}

	// Main node with a question offers edit-question, then add-answer.
	m, _ = press(m, "enter")
	if m.mode != modeActions || len(m.commands) != 2 {
		t.Fatalf("mode=%v commands=%v", m.mode, m.commands)
	}
	m, _ = press(m, "down")
	m, _ = press(m, "enter")
	if m.mode != modeDialog || m.dialog.Action != shell.AddAnswer {
		t.Fatalf("mode=%v dialog=%+v", m.mode, m.dialog)
	}

	var cmd tea.Cmd
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("North")})
	m = next.(shellModel)
	m, _ = press(m, "enter") // to the video field
	m, cmd = press(m, "enter")
	if !m.busy {
		t.Fatal("submit did not start")
	}
	m = runCmd(t, m, cmd)

	if m.err != nil || m.mode != modeBrowse {
		t.Fatalf("after submit: mode=%v err=%v", m.mode, m.err)
	}
	if len(gw.added) != 1 || gw.added[0].Text != "North" || gw.added[0].Video != nil {
		t.Errorf("backend got %+v", gw.added)
	}
	if len(m.nodes()) != 2 {
		t.Errorf("nodes after submit = %d, want 2", len(m.nodes()))
	}
}

func TestShellModelFieldError(t *testing.T) {
	gw := &memGateway{project: &tree.Project{ID: "p1", Nodes: []*tree.Node{{ID: "n1", Question: "Where?"}}}}
	m := newShellModel(context.Background(), shell.New(gw, "p1"))
	m = runCmd(t, m, m.Init())

	m, _ = press(m, "enter")
	m, _ = press(m, "down")
	m, _ = press(m, "enter")
	m, _ = press(m, "enter")
	m, cmd := press(m, "enter") // empty answer text
	m = runCmd(t, m, cmd)

	if m.mode != modeDialog || !strings.Contains(m.form.err, "text") {
		t.Errorf("mode=%v form error=%q", m.mode, m.form.err)
	}
	if len(gw.added) != 0 {
		t.Error("invalid form reached the backend")
	}
	m, _ = press(m, "esc")
	if m.mode != modeBrowse {
		t.Errorf("esc did not close the dialog")
	}
}

// =============================================================================
// Commands
// =============================================================================

func TestProjectsListCommand(t *testing.T) {
	var calls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/v1/projects" || r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("got %s %s auth=%q", r.Method, r.URL.Path, r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"p1","name":"Tour","main_video_url":"","nodes":[]}]`))
	}))
	defer backend.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfgFile := fmt.Sprintf("[cache]\nbackend = \"none\"\n\n[session]\ndir = %q\n", filepath.Join(dir, "sessions"))
	if err := os.WriteFile(cfgPath, []byte(cfgFile), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvToken, "tok-1")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "--api-url", backend.URL, "projects", "list"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("projects list: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
	if c.Config.APIURL != backend.URL {
		t.Errorf("APIURL = %q, --api-url not applied", c.Config.APIURL)
	}
}

func TestInvalidAPIURLFlag(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "cache", "path"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("missing explicit config: err = %v", err)
	}

	c = New(io.Discard, LogInfo)
	root = c.RootCommand()
	root.SetArgs([]string{"--api-url", "not a url", "cache", "path"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "--api-url") {
		t.Errorf("bad --api-url: err = %v", err)
	}
}
