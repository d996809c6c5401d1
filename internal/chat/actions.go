// Package chat implements an interactive prompt against a fine-tuned model.
package chat

import (
	"context"
	"os"

	"github.com/mtechzilla/sitetune/internal/common"
	"github.com/mtechzilla/sitetune/pkg/generator"
	"github.com/urfave/cli/v2"
)

func ChatAction(c *cli.Context) error {
	env, err := common.LoadEnv()
	if err != nil {
		return cli.Exit(err.Error(), common.ExitConfig)
	}

	repl := &REPL{
		Completer: generator.NewOpenAICompleter(common.NewOpenAIClient(env)),
		Model:     c.String("model"),
		In:        os.Stdin,
		Out:       os.Stdout,
		ErrOut:    os.Stderr,
	}
	if err := repl.Run(context.Background()); err != nil {
		return cli.Exit(err.Error(), common.ExitRuntime)
	}
	return nil
}
