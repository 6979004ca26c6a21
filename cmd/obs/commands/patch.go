package commands

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	observable "github.com/syogandev/go-observable"
	"github.com/syogandev/go-observable/statediff"
)

type patchConfig struct {
	*cli.Command
	Diff  bool `cli:"name=diff aliases=d desc='print a diff instead of the result'"`
	Color bool `cli:"name=color desc='force colored diff output'"`
}

// PatchCommand returns the patch subcommand.
func PatchCommand() *cli.Command {
	cfg := &patchConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "patch").
		WithSynopsis("patch [--diff] <state.yaml> <patch.json> - apply an RFC 6902 patch to a state document").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *patchConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: patch <state.yaml> <patch.json>")
	}
	initial, err := loadState(args[0])
	if err != nil {
		return err
	}
	patchDoc, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	s, err := observable.New(initial)
	if err != nil {
		return err
	}
	before := s.Snapshot()
	if err := s.ApplyJSONPatch(patchDoc); err != nil {
		return err
	}
	if cfg.Diff {
		colorize := cfg.Color || statediff.ColorEnabled(os.Stdout)
		txt, err := statediff.Diff(before, s.Snapshot(), colorize)
		if err != nil {
			return err
		}
		fmt.Fprint(cc.Out, txt)
		return nil
	}
	txt, err := statediff.Render(s.Snapshot())
	if err != nil {
		return err
	}
	fmt.Fprint(cc.Out, txt)
	return nil
}
