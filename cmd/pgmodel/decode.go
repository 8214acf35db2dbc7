package main

import (
	"encoding"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/jackc/pgmodel"
	"github.com/spf13/cobra"
)

func newDecodeCmd(a *app) *cobra.Command {
	var null bool

	cmd := &cobra.Command{
		Use:   "decode TYPE TEXT",
		Short: "Decode the text form of a value and print it as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src []byte
			if len(args) == 2 {
				src = []byte(args[1])
			} else if !null {
				return fmt.Errorf("missing TEXT, use --null to decode NULL")
			}

			v, err := a.session.Decode(args[0], src)
			if err != nil {
				return err
			}

			if r, ok := v.(*pgmodel.Record); ok {
				v = r.Extract()
			}
			if v == nil {
				color.New(color.FgHiBlack).Fprintln(cmd.OutOrStdout(), "null")
				return nil
			}

			out, err := json.MarshalIndent(jsonValue(v), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&null, "null", false, "decode SQL NULL")

	return cmd
}

// jsonValue replaces values that have a String method but no JSON or text encoding by their string form.
func jsonValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = jsonValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = jsonValue(e)
		}
		return out
	case json.Marshaler, encoding.TextMarshaler:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return v
}
