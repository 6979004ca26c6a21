package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"

	observable "github.com/syogandev/go-observable"
	"github.com/syogandev/go-observable/statediff"
)

type applyConfig struct {
	*cli.Command
	Batch bool `cli:"name=batch aliases=b desc='start in batching mode'"`
	Color bool `cli:"name=color desc='force colored diff output'"`
	Quiet bool `cli:"name=quiet aliases=q desc='print only the final state'"`
}

// ApplyCommand returns the apply subcommand.
func ApplyCommand() *cli.Command {
	cfg := &applyConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "apply").
		WithSynopsis("apply [--batch] <state.yaml> [script] - run a write script against a state document").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *applyConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: apply <state.yaml> [script]")
	}
	initial, err := loadState(args[0])
	if err != nil {
		return err
	}
	var scriptSrc io.Reader = os.Stdin
	if len(args) == 2 {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		scriptSrc = f
	}
	ops, err := parseScript(scriptSrc)
	if err != nil {
		return err
	}

	colorize := cfg.Color || statediff.ColorEnabled(os.Stdout)
	var prev any
	s, err := observable.New(initial,
		observable.WithBatching(cfg.Batch),
		observable.WithNotify(func(snap any) {
			if cfg.Quiet {
				return
			}
			if txt, derr := statediff.Diff(prev, snap, colorize); derr == nil {
				fmt.Fprint(cc.Out, txt)
			}
			prev = snap
		}))
	if err != nil {
		return err
	}
	prev = s.Snapshot()

	if err := runScript(s, ops); err != nil {
		return err
	}
	txt, err := statediff.Render(s.Snapshot())
	if err != nil {
		return err
	}
	fmt.Fprintln(cc.Out, "---")
	fmt.Fprint(cc.Out, txt)
	return nil
}
