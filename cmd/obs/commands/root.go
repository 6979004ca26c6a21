package commands

import (
	"github.com/scott-cotton/cli"
)

const usageText = `obs - inspect observable state transitions

Usage:
  obs apply <state.yaml> [script]     Run a write script against a state document
  obs patch <state.yaml> <patch.json> Apply an RFC 6902 patch to a state document

Script lines:
  set <path> <value>    Write a field, e.g. "set user.name Ada"
  replace <value>       Replace the whole state
  begin                 Enter batching mode
  flush                 Apply queued writes, stay batching
  end                   Apply queued writes, leave batching
  # ...                 Comment

Examples:
  obs apply state.yaml script.txt
  echo "set count 2" | obs apply state.yaml
  obs patch state.yaml changes.json --diff`

// Root returns the obs command tree.
func Root() *cli.Command {
	return cli.NewCommand("obs").
		WithSynopsis("obs - inspect observable state transitions").
		WithDescription(usageText).
		WithSubs(
			ApplyCommand(),
			PatchCommand(),
		)
}
