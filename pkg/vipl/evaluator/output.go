package evaluator

import "fmt"

// Output receives program output. Each print statement is exactly one
// PrintLine call carrying the evaluated operand.
type Output interface {
	PrintLine(line string)
}

// OutputFunc adapts a function to Output.
type OutputFunc func(line string)

func (f OutputFunc) PrintLine(line string) { f(line) }

// Stdout prints each line to standard output.
var Stdout Output = OutputFunc(func(line string) { fmt.Println(line) })
