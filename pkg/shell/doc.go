// Package shell holds the render state of one open project and turns node
// commands into dialogs and dialogs into backend mutations.
//
// # Overview
//
// A [Shell] keeps the fetched project together with its layout. The state is
// never patched: every successful mutation re-fetches the whole project and
// reruns the layout engine.
//
//	sh := shell.New(client, projectID, shell.WithLogger(logger))
//	st, err := sh.Refresh(ctx)
//
//	n, _ := st.Layout.Node("A1")
//	dlg, err := sh.Dispatch(n.Commands()[0])  // edit-answer
//	st, err = sh.Submit(ctx, dlg, shell.Input{Text: "Left, definitely"})
//
// # Concurrency
//
// A Shell may be shared by the terminal UI and preview-server handlers.
// Each refresh takes a sequence number when it starts; a result is applied
// only if no later-started refresh has been applied already, so a slow fetch
// never overwrites fresher state. Discarded results are reported as
// [ErrStale].
package shell
