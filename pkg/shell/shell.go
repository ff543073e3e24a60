package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/videofonik/vfconsole/pkg/api"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/observability"
	"github.com/videofonik/vfconsole/pkg/tree"
)

var (
	// ErrStale is returned by Refresh when a refresh that started later has
	// already been applied. The returned state is the current one.
	ErrStale = errors.New("stale refresh discarded")

	// ErrNotLoaded is returned when a command arrives before the first
	// successful refresh.
	ErrNotLoaded = errors.New("project not loaded")

	// ErrUnknownNode is returned when a command names a node that is not
	// part of the current layout.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnsupported is returned when a node does not offer the requested
	// action.
	ErrUnsupported = errors.New("action not supported by node")
)

// Gateway is the part of the backend API the shell uses. *api.Client
// implements it.
type Gateway interface {
	GetProject(ctx context.Context, id string) (*tree.Project, error)
	AddNode(ctx context.Context, projectID string, in api.NodeInput) (*tree.Node, error)
	AddAnswer(ctx context.Context, projectID, nodeID string, in api.AnswerInput) (*tree.Node, error)
}

var _ Gateway = (*api.Client)(nil)

// State is a snapshot of the render state.
type State struct {
	Project   *tree.Project
	Layout    *layout.Result
	Seq       uint64 // sequence number of the refresh that produced it
	UpdatedAt time.Time
}

// Loaded reports whether the state holds a layout.
func (s State) Loaded() bool { return s.Layout != nil }

// Graph returns the state in wire format.
func (s State) Graph() graph.Layout {
	if s.Layout == nil {
		return graph.Layout{}
	}
	l := graph.FromResult(s.Layout)
	if s.Project != nil {
		l.ProjectID, l.ProjectName = s.Project.ID, s.Project.Name
	}
	return l
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option { return func(s *Shell) { s.logger = l } }

// WithLayoutOptions sets the options passed to the layout engine.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(s *Shell) { s.layoutOpts = opts }
}

// WithOnChange registers a callback invoked, outside the lock, after each
// applied refresh.
func WithOnChange(fn func(State)) Option { return func(s *Shell) { s.onChange = fn } }

// Shell is the presentation state of one project.
type Shell struct {
	gw         Gateway
	projectID  string
	layoutOpts []layout.Option
	logger     *log.Logger
	onChange   func(State)

	mu      sync.Mutex
	started uint64 // last sequence number handed out
	state   State
}

// New returns a shell for the project. Call Refresh to load it.
func New(gw Gateway, projectID string, opts ...Option) *Shell {
	s := &Shell{
		gw:        gw,
		projectID: projectID,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ProjectID returns the id of the project the shell edits.
func (s *Shell) ProjectID() string { return s.projectID }

// State returns the current snapshot.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Refresh re-fetches the project and recomputes its layout. A result that
// lost the race against a later-started refresh is discarded and ErrStale
// returned together with the current state.
func (s *Shell) Refresh(ctx context.Context) (State, error) {
	s.mu.Lock()
	s.started++
	seq := s.started
	s.mu.Unlock()

	st, err := s.refresh(ctx, seq)
	observability.Emit(ctx, observability.Event{Stage: observability.StageRefresh, Subject: s.projectID, Count: int(seq), Err: err})
	return st, err
}

func (s *Shell) refresh(ctx context.Context, seq uint64) (State, error) {
	p, err := s.gw.GetProject(ctx, s.projectID)
	if err != nil {
		return s.State(), fmt.Errorf("fetch project: %w", err)
	}
	res, err := layout.ComputeProject(p, s.layoutOpts...)
	if err != nil {
		return s.State(), vferrors.Wrap(vferrors.ErrCodeInvalidTree, err, "layout project %q", p.ID)
	}

	s.mu.Lock()
	if seq <= s.state.Seq {
		cur := s.state
		s.mu.Unlock()
		s.logger.Debug("discarding stale refresh", "seq", seq, "applied", cur.Seq)
		return cur, ErrStale
	}
	s.state = State{Project: p, Layout: res, Seq: seq, UpdatedAt: time.Now()}
	st := s.state
	s.mu.Unlock()

	s.logger.Debug("refreshed", "project", p.ID, "nodes", len(res.Nodes), "edges", len(res.Edges), "seq", seq)
	if s.onChange != nil {
		s.onChange(st)
	}
	return st, nil
}

// Node returns the positioned node with the given id.
func (s *Shell) Node(id string) (layout.Node, bool) {
	st := s.State()
	if st.Layout == nil {
		return layout.Node{}, false
	}
	return st.Layout.Node(id)
}

// Dispatch turns a node command into a pre-populated dialog:
//
//   - AddQuestion: question dialog on the node, empty
//   - EditQuestion: question dialog on the node, current question
//   - AddAnswer: answer dialog on the node, empty
//   - EditAnswer: answer dialog on the node's parent, current answer text
func (s *Shell) Dispatch(cmd layout.Command) (Dialog, error) {
	st := s.State()
	if !st.Loaded() {
		return Dialog{}, ErrNotLoaded
	}

	// The placeholder of an empty project has no backend node.
	if cmd.NodeID == "" {
		if cmd.Action != AddQuestion || len(st.Layout.Nodes) != 1 || !st.Layout.Nodes[0].Data.Placeholder {
			return Dialog{}, fmt.Errorf("%w: command without node id", ErrUnknownNode)
		}
		return Dialog{Kind: QuestionDialog, Action: AddQuestion}, nil
	}

	n, ok := st.Layout.Node(cmd.NodeID)
	if !ok {
		return Dialog{}, fmt.Errorf("%w: %q", ErrUnknownNode, cmd.NodeID)
	}
	if !n.Supports(cmd.Action) {
		return Dialog{}, fmt.Errorf("%w: %s on %s node %q", ErrUnsupported, cmd.Action, n.Kind, n.ID)
	}

	d := Dialog{Action: cmd.Action, TargetID: n.ID}
	switch cmd.Action {
	case AddQuestion:
		d.Kind = QuestionDialog
	case EditQuestion:
		d.Kind = QuestionDialog
		d.Question = n.Data.Question
	case AddAnswer:
		d.Kind = AnswerDialog
	case EditAnswer:
		d.Kind = AnswerDialog
		d.TargetID = n.ParentID
		d.Text = n.Data.Text
	}

	target := n
	if d.TargetID != n.ID {
		if target, ok = st.Layout.Node(d.TargetID); !ok {
			return Dialog{}, fmt.Errorf("%w: parent %q of %q", ErrUnknownNode, d.TargetID, n.ID)
		}
	}
	d.BackendID = backendID(target)
	return d, nil
}

func backendID(n layout.Node) string {
	switch {
	case n.Data.Placeholder:
		return ""
	case n.Data.SourceID != "":
		return n.Data.SourceID
	case n.Data.Synthetic:
		return strings.TrimPrefix(n.ID, layout.SyntheticQuestionPrefix)
	}
	return n.ID
}

// Submit validates the form, sends it to the backend and refreshes. Field
// errors (*errors.FieldError) are returned before any request is made.
//
// Question dialogs post a question below the target (a root question when
// there is no target); answer dialogs post an answer, with an optional
// video, to the target.
func (s *Shell) Submit(ctx context.Context, d Dialog, in Input) (State, error) {
	switch d.Kind {
	case QuestionDialog:
		if err := vferrors.ValidateText("question", in.Question); err != nil {
			return s.State(), err
		}
		_, err := s.gw.AddNode(ctx, s.projectID, api.NodeInput{
			Question:      vferrors.NormalizeText(in.Question),
			ParentID:      d.BackendID,
			IsSubQuestion: d.BackendID != "",
		})
		if err != nil {
			return s.State(), err
		}
	case AnswerDialog:
		if err := vferrors.ValidateText("text", in.Text); err != nil {
			return s.State(), err
		}
		if in.Video != nil {
			if err := vferrors.ValidateVideoFile(in.Video.Filename, in.Video.ContentType); err != nil {
				return s.State(), err
			}
		}
		if d.BackendID == "" {
			return s.State(), vferrors.New(vferrors.ErrCodeInvalidInput, "answer dialog has no target node")
		}
		_, err := s.gw.AddAnswer(ctx, s.projectID, d.BackendID, api.AnswerInput{
			Text:  vferrors.NormalizeText(in.Text),
			Video: in.Video,
		})
		if err != nil {
			return s.State(), err
		}
	default:
		return s.State(), vferrors.New(vferrors.ErrCodeInvalidInput, "unknown dialog kind %d", d.Kind)
	}

	s.logger.Info("saved", "action", d.Action, "node", d.BackendID)
	observability.Emit(ctx, observability.Event{Stage: observability.StageSubmit, Subject: d.Action.String(), Count: 1})

	st, err := s.Refresh(ctx)
	if errors.Is(err, ErrStale) {
		return st, nil
	}
	return st, err
}
