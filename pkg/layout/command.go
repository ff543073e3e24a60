package layout

// Action is a user action that can be requested on a positioned node.
type Action int

const (
	AddQuestion Action = iota + 1
	EditQuestion
	AddAnswer
	EditAnswer
)

func (a Action) String() string {
	switch a {
	case AddQuestion:
		return "add-question"
	case EditQuestion:
		return "edit-question"
	case AddAnswer:
		return "add-answer"
	case EditAnswer:
		return "edit-answer"
	default:
		return "unknown"
	}
}

// ParseAction maps the names produced by Action.String back to actions.
func ParseAction(s string) (Action, bool) {
	for _, a := range []Action{AddQuestion, EditQuestion, AddAnswer, EditAnswer} {
		if a.String() == s {
			return a, true
		}
	}
	return 0, false
}

// Command is a request to act on a node. NodeID is empty when the target is
// the placeholder of an empty project.
type Command struct {
	Action   Action `json:"action"`
	NodeID   string `json:"node_id"`
	ParentID string `json:"parent_id,omitempty"`
}

// Commands returns the actions the node supports, in display order.
func (n Node) Commands() []Command {
	cmd := func(a Action) Command {
		return Command{Action: a, NodeID: n.ID, ParentID: n.ParentID}
	}
	switch {
	case n.Data.Placeholder:
		return []Command{{Action: AddQuestion}}
	case n.IsMain() && n.Data.Question == "":
		return []Command{cmd(AddQuestion)}
	case n.IsAnswer():
		return []Command{cmd(EditAnswer), cmd(AddQuestion)}
	default:
		return []Command{cmd(EditQuestion), cmd(AddAnswer)}
	}
}

// Supports reports whether a is one of the node's commands.
func (n Node) Supports(a Action) bool {
	for _, c := range n.Commands() {
		if c.Action == a {
			return true
		}
	}
	return false
}
