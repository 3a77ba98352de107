package main

import (
	"fmt"

	"eca-morph/internal/rule"

	"github.com/spf13/cobra"
)

func runRules(cmd *cobra.Command, args []string) error {
	table := rule.Default()
	if full, _ := cmd.Flags().GetBool("full"); full {
		table = rule.Full()
	}
	out := cmd.OutOrStdout()
	for _, id := range table.IDs() {
		r, err := table.Lookup(id)
		if err != nil {
			return err
		}
		code := rule.Code(r)
		fmt.Fprintf(out, "%3d  code=%3d  bits=%08b\n", id, code, code)
	}
	return nil
}
