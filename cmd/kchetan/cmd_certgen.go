package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krishichetan/kchetan/internal/certgen"
)

func newCertgenCmd(c *cli) *cobra.Command {
	var hosts []string
	cmd := &cobra.Command{
		Use:   "certgen",
		Short: "Generate a self-signed certificate for the view server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := certgen.WriteFiles(c.opts.TLSCert, c.opts.TLSKey, hosts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s and %s\n", c.opts.TLSCert, c.opts.TLSKey)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&hosts, "host", certgen.DefaultHosts, "DNS name or IP to include (repeatable)")
	return cmd
}
