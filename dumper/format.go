package dumper

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
)

// formatFloats renders values space-separated under the given verb.
func formatFloats(values []float64, verb string) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, verb, v)
	}
	return b.String()
}

// appendLine appends one line to an append-only per-sequence text file.
// Frame ordering across lines is guaranteed by the pipeline's join barrier,
// not here.
func appendLine(path, line string) (err error) {
	//nolint:gosec
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	_, err = f.WriteString(line + "\n")
	return err
}

// writeBinary writes fixed-width records as raw little-endian binary.
func writeBinary(path string, data interface{}) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return binary.Write(f, binary.LittleEndian, data)
}
