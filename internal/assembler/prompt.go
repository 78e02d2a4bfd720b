package assembler

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter decides whether an existing target file may be overwritten.
type Prompter interface {
	ConfirmOverwrite(target string) bool
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(target string) bool

func (f PrompterFunc) ConfirmOverwrite(target string) bool { return f(target) }

// NoPrompt always answers yes; used with --no-prompt.
var NoPrompt = PrompterFunc(func(string) bool { return true })

// DenyAll always answers no; used when no terminal is attached.
var DenyAll = PrompterFunc(func(string) bool { return false })

// InteractivePrompter asks on the terminal. Without a TTY it refuses, so
// unattended runs never overwrite silently.
func InteractivePrompter() Prompter {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return DenyAll
	}
	reader := bufio.NewReader(os.Stdin)
	return PrompterFunc(func(target string) bool {
		fmt.Fprintf(os.Stderr, "overwrite %s? [y/N] ", target)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes" || answer == "j" || answer == "ja"
	})
}
