package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mtechzilla/sitetune/pkg/generator"
)

const prompt = " > "

// REPL sends each non-empty input line to the model and prints the reply.
// Errors are printed to errOut and the loop continues until in is exhausted.
type REPL struct {
	Completer generator.Completer
	Model     string
	In        io.Reader
	Out       io.Writer
	ErrOut    io.Writer
}

func (r *REPL) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.In)
	for {
		fmt.Fprint(r.Out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.Out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		completion, err := r.Completer.Complete(ctx, generator.CompletionRequest{
			Model:        r.Model,
			SystemPrompt: generator.RecordSystemPrompt,
			UserPrompt:   question,
		})
		if err != nil {
			fmt.Fprintf(r.ErrOut, "%v\n", err)
			continue
		}
		fmt.Fprintln(r.Out, strings.TrimSpace(completion.Content))
	}
}
