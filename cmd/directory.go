package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
)

var directoryFile string

// NewDirectoryCommand creates the 'directory' subcommand.
func NewDirectoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Inspect the people directory",
	}

	cmd.PersistentFlags().StringVar(&directoryFile, "people", "", "people directory file (JSON or YAML)")
	cmd.AddCommand(newDirectoryShowCommand())
	cmd.AddCommand(newDirectoryCheckCommand())
	return cmd
}

func newDirectoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List directory entries in load order",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := loadDirectory()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d people (ambiguity policy: %s)\n", dir.Len(), dir.Policy())
			for _, p := range dir.People() {
				fmt.Fprintf(out, "  %-24s %-32s %s\n", p.Name, p.Email, p.Role)
			}
			return nil
		},
	}
}

func newDirectoryCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <name>...",
		Short: "Check how names resolve against the directory",
		Long: `Check how free-text names resolve against the directory: full-name
match, first-name match, or unresolved (deferred to the model during
processing).

Examples:
  minutes directory check "Alice" --people team.yaml
  minutes directory check "Alice Wu (she/her)" "the designer" --people team.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := loadDirectory()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range args {
				if p, ok := dir.LookupExact(name); ok {
					fmt.Fprintf(out, "%-24s -> %s <%s>\n", name, p.Name, p.Email)
				} else {
					fmt.Fprintf(out, "%-24s -> unresolved\n", name)
				}
			}
			return nil
		},
	}
}

func loadDirectory() (*directory.Index, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path := directoryFile
	if path == "" {
		path = cfg.Directory.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no people directory: set --people or directory.path in config")
	}
	return directory.Load(path, directory.AmbiguityPolicy(cfg.Directory.AmbiguityPolicy))
}
