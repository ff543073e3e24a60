package shell

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/videofonik/vfconsole/pkg/api"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/tree"
)

type nodeCall struct {
	projectID string
	in        api.NodeInput
}

type answerCall struct {
	projectID, nodeID string
	in                api.AnswerInput
}

// fakeGateway serves a fixed project. The n-th GetProject call blocks until
// gates[n] is closed, if that gate exists.
type fakeGateway struct {
	mu      sync.Mutex
	project *tree.Project
	fetches int
	gates   map[int]chan struct{}
	fail    error

	nodes   []nodeCall
	answers []answerCall
}

func (g *fakeGateway) GetProject(ctx context.Context, id string) (*tree.Project, error) {
	g.mu.Lock()
	g.fetches++
	n := g.fetches
	gate := g.gates[n]
	p, fail := g.project, g.fail
	g.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail != nil {
		return nil, fail
	}
	return p, nil
}

func (g *fakeGateway) AddNode(_ context.Context, projectID string, in api.NodeInput) (*tree.Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = append(g.nodes, nodeCall{projectID, in})
	return &tree.Node{ID: "new", Question: in.Question}, nil
}

func (g *fakeGateway) AddAnswer(_ context.Context, projectID, nodeID string, in api.AnswerInput) (*tree.Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answers = append(g.answers, answerCall{projectID, nodeID, in})
	return &tree.Node{ID: "new", Text: in.Text}, nil
}

func demoProject(name string) *tree.Project {
	return &tree.Project{
		ID:   "p1",
		Name: name,
		Nodes: []*tree.Node{{
			ID:       "R",
			Question: "Which way?",
			Answers: []*tree.Node{
				{ID: "A1", Text: "Left", Question: "How far?", SubAnswers: []*tree.Node{{ID: "SA1", Text: "Far"}}},
				{ID: "A2", Text: "Right"},
			},
		}},
	}
}

func loadedShell(t *testing.T) (*Shell, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{project: demoProject("Demo")}
	s := New(gw, "p1")
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return s, gw
}

func TestRefresh(t *testing.T) {
	var changes int
	gw := &fakeGateway{project: demoProject("Demo")}
	s := New(gw, "p1", WithOnChange(func(State) { changes++ }))

	if s.State().Loaded() {
		t.Fatal("new shell should not be loaded")
	}
	st, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Layout.Nodes) != 5 || len(st.Layout.Edges) != 4 {
		t.Errorf("layout = %d nodes, %d edges", len(st.Layout.Nodes), len(st.Layout.Edges))
	}
	if st.Seq != 1 || changes != 1 {
		t.Errorf("seq = %d, changes = %d", st.Seq, changes)
	}
	if g := st.Graph(); g.ProjectID != "p1" || len(g.Nodes) != 5 {
		t.Errorf("Graph() = %s with %d nodes", g.ProjectID, len(g.Nodes))
	}
}

func TestRefreshError(t *testing.T) {
	s, gw := loadedShell(t)
	gw.fail = vferrors.FromStatus(503, "")

	st, err := s.Refresh(context.Background())
	if !vferrors.Is(err, vferrors.ErrCodeNetwork) {
		t.Fatalf("error = %v, want NETWORK_ERROR", err)
	}
	if !st.Loaded() || st.Seq != 1 {
		t.Error("failed refresh should keep previous state")
	}
}

func TestRefreshDiscardsStale(t *testing.T) {
	gate := make(chan struct{})
	gw := &fakeGateway{project: demoProject("old"), gates: map[int]chan struct{}{1: gate}}
	s := New(gw, "p1")
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() {
		_, err := s.Refresh(ctx)
		slow <- err
	}()

	// Wait until the slow refresh has taken its sequence number and fetch slot.
	for {
		gw.mu.Lock()
		n := gw.fetches
		gw.mu.Unlock()
		if n == 1 {
			break
		}
		runtime.Gosched()
	}

	gw.mu.Lock()
	gw.project = demoProject("new")
	gw.mu.Unlock()

	st, err := s.Refresh(ctx)
	if err != nil {
		t.Fatalf("fast refresh: %v", err)
	}
	if st.Project.Name != "new" || st.Seq != 2 {
		t.Fatalf("fast refresh applied %q seq %d", st.Project.Name, st.Seq)
	}

	close(gate)
	if err := <-slow; !errors.Is(err, ErrStale) {
		t.Errorf("slow refresh error = %v, want ErrStale", err)
	}
	if got := s.State(); got.Project.Name != "new" || got.Seq != 2 {
		t.Errorf("state after stale refresh = %q seq %d", got.Project.Name, got.Seq)
	}
}

func TestDispatch(t *testing.T) {
	s, _ := loadedShell(t)

	tests := []struct {
		name       string
		cmd        layout.Command
		wantKind   DialogKind
		wantTarget string
		wantBack   string
		wantQ      string
		wantText   string
	}{
		{"edit root question", layout.Command{Action: EditQuestion, NodeID: "R"}, QuestionDialog, "R", "R", "Which way?", ""},
		{"add answer to root", layout.Command{Action: AddAnswer, NodeID: "R"}, AnswerDialog, "R", "R", "", ""},
		{"add question on answer", layout.Command{Action: AddQuestion, NodeID: "A2", ParentID: "R"}, QuestionDialog, "A2", "A2", "", ""},
		{"edit answer", layout.Command{Action: EditAnswer, NodeID: "A2", ParentID: "R"}, AnswerDialog, "R", "R", "", "Right"},
		{"edit synthetic question", layout.Command{Action: EditQuestion, NodeID: "question-A1", ParentID: "A1"}, QuestionDialog, "question-A1", "A1", "How far?", ""},
		{"add answer to synthetic question", layout.Command{Action: AddAnswer, NodeID: "question-A1", ParentID: "A1"}, AnswerDialog, "question-A1", "A1", "", ""},
		{"edit sub-answer", layout.Command{Action: EditAnswer, NodeID: "SA1", ParentID: "question-A1"}, AnswerDialog, "question-A1", "A1", "", "Far"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := s.Dispatch(tt.cmd)
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if d.Kind != tt.wantKind || d.TargetID != tt.wantTarget || d.BackendID != tt.wantBack {
				t.Errorf("dialog = %s on %q (backend %q), want %s on %q (%q)",
					d.Kind, d.TargetID, d.BackendID, tt.wantKind, tt.wantTarget, tt.wantBack)
			}
			if d.Question != tt.wantQ || d.Text != tt.wantText {
				t.Errorf("payload = %q/%q, want %q/%q", d.Question, d.Text, tt.wantQ, tt.wantText)
			}
		})
	}
}

func TestDispatchErrors(t *testing.T) {
	gw := &fakeGateway{project: demoProject("Demo")}
	s := New(gw, "p1")
	if _, err := s.Dispatch(layout.Command{Action: AddAnswer, NodeID: "R"}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("before refresh: %v", err)
	}
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cmd  layout.Command
		want error
	}{
		{"unknown node", layout.Command{Action: AddAnswer, NodeID: "nope"}, ErrUnknownNode},
		{"answer cannot get answers", layout.Command{Action: AddAnswer, NodeID: "A2"}, ErrUnsupported},
		{"main cannot edit answer", layout.Command{Action: EditAnswer, NodeID: "R"}, ErrUnsupported},
		{"empty id on loaded project", layout.Command{Action: AddQuestion}, ErrUnknownNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Dispatch(tt.cmd); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubmitQuestion(t *testing.T) {
	s, gw := loadedShell(t)
	ctx := context.Background()

	d, err := s.Dispatch(layout.Command{Action: AddQuestion, NodeID: "A2", ParentID: "R"})
	if err != nil {
		t.Fatal(err)
	}
	st, err := s.Submit(ctx, d, Input{Question: "  Why right?  "})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(gw.nodes) != 1 {
		t.Fatalf("AddNode calls = %d", len(gw.nodes))
	}
	want := api.NodeInput{Question: "Why right?", ParentID: "A2", IsSubQuestion: true}
	if got := gw.nodes[0]; got.projectID != "p1" || got.in != want {
		t.Errorf("AddNode(%q, %+v), want p1, %+v", got.projectID, got.in, want)
	}
	if st.Seq != 2 {
		t.Errorf("state seq after submit = %d, want 2 (refetched)", st.Seq)
	}
}

func TestSubmitRootQuestionOnEmptyProject(t *testing.T) {
	gw := &fakeGateway{project: &tree.Project{ID: "p1", Name: "Empty"}}
	s := New(gw, "p1")
	st, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	cmd := st.Layout.Nodes[0].Commands()[0]
	d, err := s.Dispatch(cmd)
	if err != nil {
		t.Fatalf("Dispatch placeholder: %v", err)
	}
	if d.Kind != QuestionDialog || d.BackendID != "" {
		t.Fatalf("placeholder dialog = %+v", d)
	}
	if _, err := s.Submit(context.Background(), d, Input{Question: "Welcome?"}); err != nil {
		t.Fatal(err)
	}
	want := api.NodeInput{Question: "Welcome?"}
	if got := gw.nodes[0].in; got != want {
		t.Errorf("AddNode input = %+v, want %+v", got, want)
	}
}

func TestSubmitAnswer(t *testing.T) {
	s, gw := loadedShell(t)

	d, err := s.Dispatch(layout.Command{Action: AddAnswer, NodeID: "question-A1", ParentID: "A1"})
	if err != nil {
		t.Fatal(err)
	}
	video := &api.Upload{Filename: "near.mp4", Body: strings.NewReader("data")}
	if _, err := s.Submit(context.Background(), d, Input{Text: "Near", Video: video}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(gw.answers) != 1 {
		t.Fatalf("AddAnswer calls = %d", len(gw.answers))
	}
	got := gw.answers[0]
	if got.nodeID != "A1" || got.in.Text != "Near" || got.in.Video != video {
		t.Errorf("AddAnswer(%q, %+v)", got.nodeID, got.in)
	}
}

func TestSubmitValidation(t *testing.T) {
	s, gw := loadedShell(t)
	fetches := gw.fetches

	qd, _ := s.Dispatch(layout.Command{Action: EditQuestion, NodeID: "R"})
	ad, _ := s.Dispatch(layout.Command{Action: AddAnswer, NodeID: "R"})

	tests := []struct {
		name  string
		d     Dialog
		in    Input
		field string
	}{
		{"empty question", qd, Input{Question: "   "}, "question"},
		{"empty answer", ad, Input{Text: ""}, "text"},
		{"non-video upload", ad, Input{Text: "ok", Video: &api.Upload{Filename: "notes.pdf"}}, "video"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Submit(context.Background(), tt.d, tt.in)
			var fe *vferrors.FieldError
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Errorf("error = %v, want field error on %s", err, tt.field)
			}
		})
	}

	if len(gw.nodes)+len(gw.answers) != 0 {
		t.Error("invalid forms reached the gateway")
	}
	if gw.fetches != fetches {
		t.Error("invalid forms triggered a refresh")
	}
}

func TestDialogTitle(t *testing.T) {
	tests := []struct {
		action layout.Action
		title  string
		edit   bool
	}{
		{AddQuestion, "Add Question", false},
		{EditQuestion, "Edit Question", true},
		{AddAnswer, "Add Answer", false},
		{EditAnswer, "Edit Answer", true},
	}
	for _, tt := range tests {
		d := Dialog{Action: tt.action}
		if d.Title() != tt.title || d.IsEdit() != tt.edit {
			t.Errorf("%s: title %q edit %v", tt.action, d.Title(), d.IsEdit())
		}
	}
}
