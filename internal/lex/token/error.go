package token

import "fmt"

// ErrorKind is the sum of diagnosable failure kinds a component may report.
type ErrorKind int

const (
	NoErrorKind ErrorKind = iota
	NoMemory
	InternalError
	NoInput
	OpenInstruction
	InstructionError
	InstructionNotOpen
	InstructionMissingArgs
	UnwantedWhiteSpace
)

// String implements [fmt.Stringer] for an [ErrorKind].
func (e ErrorKind) String() string {
	switch e {
	case NoMemory:
		return "NoMemory"
	case InternalError:
		return "InternalError"
	case NoInput:
		return "NoInput"
	case OpenInstruction:
		return "OpenInstruction"
	case InstructionError:
		return "InstructionError"
	case InstructionNotOpen:
		return "InstructionNotOpen"
	case InstructionMissingArgs:
		return "InstructionMissingArgs"
	case UnwantedWhiteSpace:
		return "UnwantedWhiteSpace"
	default:
		return "NoErrorKind"
	}
}

// Source records the provenance of a diagnostic: the component that raised
// it, a number identifying the raising site within that component, a stable
// code that MUST be preserved across implementations for golden-output
// testing, and the global byte offset of the offending construct.
//
// ImplLine is not a source line number: the scanner numbers its raising
// sites 1 to 6, and the resolver and queue leave it 0.
type Source struct {
	Component    string // e.g. "scanner", "resolver", "queue"
	ImplLine     int    // raising-site number within Component, 0 if unnumbered
	Code         string // stable_error_code
	GlobalOffset int
}

// String implements [fmt.Stringer] for a [Source].
func (s Source) String() string {
	return fmt.Sprintf("%s:%d(%s)@%d", s.Component, s.ImplLine, s.Code, s.GlobalOffset)
}
