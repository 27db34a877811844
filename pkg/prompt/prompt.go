package prompt

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
)

// Interactive reports whether stdin is a terminal a prompt can be shown on
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Confirm prompts for yes/no
func Confirm(message string, defaultVal bool) (bool, error) {
	var result bool
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultVal,
	}
	err := survey.AskOne(prompt, &result)
	return result, err
}

// ConfirmOr prompts when interactive and returns defaultVal otherwise
func ConfirmOr(message string, defaultVal bool) (bool, error) {
	if !Interactive() {
		return defaultVal, nil
	}
	return Confirm(message, defaultVal)
}
