package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/jackc/pgmodel"
	"github.com/spf13/cobra"
)

func newFieldsCmd(a *app) *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "fields TYPE",
		Short: "Print the fields of an entity and its select list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, ok := a.session.TypeMap().Codec(args[0])
			if !ok {
				return fmt.Errorf("no entity registered for type %q", args[0])
			}
			entity, ok := codec.(*pgmodel.EntityCodec)
			if !ok {
				return fmt.Errorf("%s is not an entity type", args[0])
			}

			w := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			cyan := color.New(color.FgCyan)
			gray := color.New(color.FgHiBlack)

			structure := entity.Structure()
			bold.Fprintf(w, "%s", entity.EntityType().Name)
			if structure.Relation() != "" {
				gray.Fprintf(w, " (%s)", structure.Relation())
			}
			fmt.Fprintln(w)

			projection := entity.Projection()
			names := projection.FieldNames()
			width := 0
			for _, name := range names {
				width = max(width, len(name))
			}

			pk := structure.PrimaryKey()
			types := projection.FieldTypes()
			for _, name := range names {
				fmt.Fprint(w, "  ")
				cyan.Fprint(w, name)
				fmt.Fprint(w, strings.Repeat(" ", width-len(name)+2))
				fmt.Fprint(w, types[name])
				if slices.Contains(pk, name) {
					gray.Fprint(w, " primary key")
				}
				fmt.Fprintln(w)
			}

			fmt.Fprintln(w)
			fmt.Fprintf(w, "select %s\n", projection.FormatFieldsWithFieldAlias(alias))
			return nil
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "table alias prefixed to every field")

	return cmd
}
