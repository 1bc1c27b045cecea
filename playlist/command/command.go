// Package command implements the playlist's undoable edit commands
// (§3 "Command stack", §4.9 "Undo/redo"): the move, remove and randomize
// edits are Commands pushed onto a Stack.
package command

import "github.com/zsiec/playcore/errs"

// Command is one undoable playlist edit, grounded on the original
// PLItemsCommand contract (InitCheck/Perform/Undo/GetName).
type Command interface {
	// InitCheck reports whether the command is well-formed and would
	// actually change playlist state if performed; a command that would
	// be a no-op returns errs.NotSupported so the caller can discard it
	// without pushing it on the stack (e.g. a move to the same
	// contiguous position).
	InitCheck() error

	Perform() error
	Undo() error

	// Name is a short human-readable label ("Move Entries", "Remove
	// Entry into Trash", ...) for a UI's undo/redo menu item.
	Name() string
}

// Stack is an undo/redo command stack: performed commands accumulate on
// top; Undo pops one back onto the redo side; a fresh Do after an Undo
// discards any redo history above it, matching the usual editor
// undo-stack discipline.
type Stack struct {
	done   []Command
	undone []Command
}

// NewStack returns an empty command stack.
func NewStack() *Stack { return &Stack{} }

// Do runs cmd.InitCheck, and if it reports the command would actually
// change state, performs it and pushes it onto the stack, discarding any
// previously undone commands. Returns the InitCheck/Perform error, if
// any; a discarded no-op command is not an error.
func (s *Stack) Do(cmd Command) error {
	if err := cmd.InitCheck(); err != nil {
		if errs.Is(err, errs.NotSupported) {
			return nil
		}
		return err
	}
	if err := cmd.Perform(); err != nil {
		return err
	}
	s.done = append(s.done, cmd)
	s.undone = nil
	return nil
}

// Undo reverts the most recently performed command, moving it to the
// redo side. A no-op (returns false) if there's nothing to undo.
func (s *Stack) Undo() (bool, error) {
	if len(s.done) == 0 {
		return false, nil
	}
	cmd := s.done[len(s.done)-1]
	if err := cmd.Undo(); err != nil {
		return false, err
	}
	s.done = s.done[:len(s.done)-1]
	s.undone = append(s.undone, cmd)
	return true, nil
}

// Redo re-performs the most recently undone command. A no-op (returns
// false) if there's nothing to redo.
func (s *Stack) Redo() (bool, error) {
	if len(s.undone) == 0 {
		return false, nil
	}
	cmd := s.undone[len(s.undone)-1]
	if err := cmd.Perform(); err != nil {
		return false, err
	}
	s.undone = s.undone[:len(s.undone)-1]
	s.done = append(s.done, cmd)
	return true, nil
}

// CanUndo reports whether Undo would do anything.
func (s *Stack) CanUndo() bool { return len(s.done) > 0 }

// CanRedo reports whether Redo would do anything.
func (s *Stack) CanRedo() bool { return len(s.undone) > 0 }
