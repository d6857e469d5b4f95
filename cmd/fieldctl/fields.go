package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/nexuscrm/fieldstudio/pkg/client"
	"github.com/nexuscrm/fieldstudio/pkg/editor/detail"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/spf13/cobra"
)

func newFieldsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List and inspect the fields of an object",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list OBJECT",
			Short: "List the fields of an object",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				defer c.Close()
				refs, err := c.ListFields(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "API CODE\tTYPE\tLABEL")
				for _, r := range refs {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.APICode, r.Type, r.Label)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "get OBJECT FIELD",
			Short: "Load a field through its detail editor and print its definition",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				defer c.Close()
				ed, err := openField(cmd, c, args[0], args[1])
				if err != nil {
					return err
				}
				defer ed.Close()

				def, ok := definitionOf(ed)
				if !ok {
					return fmt.Errorf("%s.%s: %s", args[0], args[1], detail.UnsupportedMessage)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(def.Flatten())
			},
		},
	)
	return cmd
}

func findRef(ctx context.Context, c *client.Client, object, code string) (fieldtypes.FieldRef, error) {
	refs, err := c.ListFields(ctx, object)
	if err != nil {
		return fieldtypes.FieldRef{}, err
	}
	for _, r := range refs {
		if r.APICode == code {
			return r, nil
		}
	}
	return fieldtypes.FieldRef{}, fmt.Errorf("object %s has no field %s", object, code)
}

// openField routes the field to its detail editor and loads it.
func openField(cmd *cobra.Command, c *client.Client, object, code string) (detail.Editor, error) {
	ref, err := findRef(cmd.Context(), c, object, code)
	if err != nil {
		return nil, err
	}
	ed := detail.Route(ref, c, detail.Options{Object: object, Notifier: notifier(cmd)})
	if err := ed.Load(cmd.Context()); err != nil {
		ed.Close()
		return nil, err
	}
	return ed, nil
}

type definer interface {
	Definition() (fieldtypes.FieldDefinition, bool)
}

func definitionOf(ed detail.Editor) (fieldtypes.FieldDefinition, bool) {
	if d, ok := ed.(definer); ok {
		return d.Definition()
	}
	return fieldtypes.FieldDefinition{}, false
}
