package shell

import (
	"github.com/videofonik/vfconsole/pkg/api"
	"github.com/videofonik/vfconsole/pkg/layout"
)

// DialogKind selects the form shown for a command.
type DialogKind int

const (
	QuestionDialog DialogKind = iota + 1
	AnswerDialog
)

func (k DialogKind) String() string {
	switch k {
	case QuestionDialog:
		return "question"
	case AnswerDialog:
		return "answer"
	default:
		return "unknown"
	}
}

// Dialog is a pre-populated form for one node command.
type Dialog struct {
	Kind   DialogKind
	Action layout.Action

	// TargetID is the visual node the form posts to. It is empty for the
	// root question of an empty project.
	TargetID string

	// BackendID is TargetID resolved to a backend node: a synthetic
	// question resolves to the answer it was derived from.
	BackendID string

	// Question or Text hold the current value when editing.
	Question string
	Text     string
}

// Title returns the heading shown above the form.
func (d Dialog) Title() string {
	switch d.Action {
	case AddQuestion:
		return "Add Question"
	case EditQuestion:
		return "Edit Question"
	case AddAnswer:
		return "Add Answer"
	case EditAnswer:
		return "Edit Answer"
	default:
		return "Dialog"
	}
}

// IsEdit reports whether the dialog edits existing content.
func (d Dialog) IsEdit() bool {
	return d.Action == EditQuestion || d.Action == EditAnswer
}

// Aliases so callers of this package need not import layout for actions.
const (
	AddQuestion  = layout.AddQuestion
	EditQuestion = layout.EditQuestion
	AddAnswer    = layout.AddAnswer
	EditAnswer   = layout.EditAnswer
)

// Input is the user's submission of a dialog. Question is read by question
// dialogs; Text and the optional Video by answer dialogs.
type Input struct {
	Question string
	Text     string
	Video    *api.Upload
}
