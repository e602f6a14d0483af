package validate

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/soundbank/internal/conf"
	"github.com/tphakala/soundbank/internal/soundbank"
)

// Command creates the validate command: load a bank and report problems
func Command(settings *conf.Settings) *cobra.Command {
	var strict, list bool

	cmd := &cobra.Command{
		Use:   "validate [bank.yaml]",
		Short: "Check a sound bank file",
		Long:  "Load a sound bank, report its size and any clips referenced by sub-items but missing from the clip table.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := settings.Engine.Bank
			if len(args) == 1 {
				path = args[0]
			}
			return Run(cmd.OutOrStdout(), path, strict, list)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat missing clips as an error")
	cmd.Flags().BoolVar(&list, "list", false, "List categories and items")

	return cmd
}

// Run validates the bank at path and writes a report to w
func Run(w io.Writer, path string, strict, list bool) error {
	reg, err := soundbank.LoadFile(path)
	if err != nil {
		return err
	}

	st := reg.Stats()
	fmt.Fprintf(w, "%s: %d categories, %d items, %d sub-items (%d redirects), %d clips\n",
		path, st.Categories, st.Items, st.SubItems, st.Redirects, st.Clips)

	if list {
		for _, c := range reg.Categories() {
			fmt.Fprintf(w, "  %s (volume %.2f)\n", c.Name, c.Volume)
			for _, item := range c.Items {
				fmt.Fprintf(w, "    %-24s %-22s %d sub-items\n", item.Name, item.PickMode, len(item.SubItems))
			}
		}
	}

	missing := reg.MissingClips()
	if len(missing) == 0 {
		return nil
	}
	fmt.Fprintf(w, "missing clips: %s\n", strings.Join(missing, ", "))
	if strict {
		return fmt.Errorf("%d clips missing from %s", len(missing), path)
	}
	return nil
}
