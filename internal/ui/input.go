package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// InputHandler reads user input for the interactive loop
type InputHandler struct {
	reader *bufio.Reader
}

// NewInputHandler creates a new input handler
func NewInputHandler() *InputHandler {
	return &InputHandler{
		reader: bufio.NewReader(os.Stdin),
	}
}

// ReadLine reads a single line of input
func (h *InputHandler) ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := h.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadInput reads a question, joining buffered lines when a multi-line
// paste is detected
func (h *InputHandler) ReadInput(prompt string) (string, error) {
	fmt.Print(prompt)

	firstLine, err := h.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	firstLine = strings.TrimRight(firstLine, "\r\n")

	if h.reader.Buffered() > 0 {
		lines := []string{firstLine}
		for h.reader.Buffered() > 0 {
			line, err := h.reader.ReadString('\n')
			if err != nil {
				break
			}
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		return strings.Join(lines, "\n"), nil
	}

	return firstLine, nil
}
