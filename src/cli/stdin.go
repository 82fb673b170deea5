package cli

import (
	"io"
	"os"
	"sync"
)

var stdinOnce sync.Once

// ReadSource returns the contents of a script file, or of standard input if the filename is "-".
// Standard input can only be read once; later reads of "-" return an empty script.
func ReadSource(filename string) (string, error) {
	if filename != "-" {
		b, err := os.ReadFile(filename)
		return string(b), err
	}
	var b []byte
	var err error
	stdinOnce.Do(func() {
		b, err = io.ReadAll(os.Stdin)
	})
	return string(b), err
}
