package credential

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptLine asks for a non-secret value and reads one line.
func promptLine(in io.Reader, out io.Writer, label string) (string, error) {
	if out != nil {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret asks for a secret. When in is a terminal the input is read
// without echo; otherwise (tests, piped stdin) it falls back to a line read.
func promptSecret(in io.Reader, out io.Writer, label string) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return promptLine(in, out, label)
	}
	if out != nil {
		fmt.Fprintf(out, "%s: ", label)
	}
	b, err := term.ReadPassword(int(f.Fd()))
	if out != nil {
		fmt.Fprintln(out)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(string(b)), nil
}
