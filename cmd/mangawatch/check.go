package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/mangawatch"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	res, err := deps.Runner.RunOnce(deps.Ctx)
	if res == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangawatch.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	if eerr := enc.Encode(res); eerr != nil {
		return eerr
	}

	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangawatch.ErrorMessage(err))
	}
	return err
}
