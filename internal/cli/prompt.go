// Package cli provides small interactive terminal helpers.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompt asks the user for a value and returns the trimmed response.
func Prompt(label string) (string, error) {
	return PromptFrom(os.Stdin, os.Stdout, label)
}

// PromptFrom reads a single prompted line from in, writing the prompt to out.
func PromptFrom(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return "", fmt.Errorf("reading response: %w", err)
	}

	return strings.TrimSpace(response), nil
}

// Confirm asks a yes/no question with the given default.
// Returns true for yes, false for no.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	return ConfirmFrom(os.Stdin, os.Stdout, prompt, defaultYes)
}

// ConfirmFrom reads a yes/no answer from in, writing the question to out.
// An empty answer takes the default; anything but y/yes is no.
func ConfirmFrom(in io.Reader, out io.Writer, prompt string, defaultYes bool) (bool, error) {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}

	fmt.Fprintf(out, "%s %s ", prompt, suffix)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false, fmt.Errorf("reading response: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))

	if response == "" {
		return defaultYes, nil
	}

	return response == "y" || response == "yes", nil
}
