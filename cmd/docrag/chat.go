package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fwojciec/docrag"
)

// maxQuestionSize bounds a single line read by the chat loop.
const maxQuestionSize = 1 << 20

// Run executes the chat command. It reads one question per line until
// "exit", "quit" or end of input.
func (c *ChatCmd) Run(deps *Dependencies) error {
	fmt.Fprintln(deps.Stdout, "Chatbot is ready! Type 'exit' to quit.")
	fmt.Fprintln(deps.Stdout)

	scanner := bufio.NewScanner(deps.Stdin)
	scanner.Buffer(make([]byte, 0, 64<<10), maxQuestionSize)

	for {
		if err := deps.Ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(deps.Stdout, "Enter your question: ")
		if !scanner.Scan() {
			fmt.Fprintln(deps.Stdout)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "exit", "quit":
			fmt.Fprintln(deps.Stdout, "Goodbye!")
			return nil
		case "":
			continue
		}

		answer, err := deps.Asker.Ask(deps.Ctx, question)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docrag.ErrorMessage(err))
			continue
		}

		fmt.Fprintf(deps.Stdout, "\nAnswer: %s\n", answer)
		fmt.Fprintln(deps.Stdout, strings.Repeat("-", 80))
	}
}
