// Package cli implements the campuseats command line client.
package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/campuseats/campuseats-backend/pkg/apiclient"
	"github.com/campuseats/campuseats-backend/pkg/config"
	"github.com/campuseats/campuseats-backend/pkg/env"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server  string
	Timeout time.Duration
	Format  string // "text" | "json" | "yaml"
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command of the campuseats CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "campuseats",
		Short: "CampusEats basket and order client",
		Long: `Manage a basket file and place one order per vendor against the
CampusEats orders API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", env.Get(config.EnvClientBaseURL, "http://localhost:8080"), "orders API base URL")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", env.Duration(config.EnvClientTimeout, apiclient.DefaultTimeout), "per-request timeout")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output on stderr")

	cmd.AddCommand(NewBasketCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))

	return cmd
}

func (o *RootOptions) client() (*apiclient.Client, error) {
	c, err := apiclient.New(o.Server, apiclient.WithTimeout(o.Timeout))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure api client", err)
	}
	return c, nil
}
