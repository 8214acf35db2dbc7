package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newEncodeCmd(a *app) *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "encode TYPE JSON",
		Short: "Encode a JSON value as a SQL expression or in the standard text format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v any
			if err := json.Unmarshal([]byte(args[1]), &v); err != nil {
				return fmt.Errorf("invalid JSON: %w", err)
			}

			if text {
				buf, err := a.session.EncodeText(args[0], v)
				if err != nil {
					return err
				}
				if buf == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "NULL")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(buf))
				return nil
			}

			sql, err := a.session.EncodeSQL(args[0], v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sql)
			return nil
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "print the standard text format instead of a SQL expression")

	return cmd
}
