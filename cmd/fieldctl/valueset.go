package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/nexuscrm/fieldstudio/pkg/client"
	"github.com/nexuscrm/fieldstudio/pkg/editor/detail"
	"github.com/nexuscrm/fieldstudio/pkg/editor/optionset"
	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/valueset"
	"github.com/spf13/cobra"
)

// optionSession is a loaded drop-down list field with its option-set editor.
type optionSession struct {
	client  *client.Client
	field   *detail.DropDownListEditor
	options *optionset.Editor
}

func (s *optionSession) Close() {
	s.field.Close()
	s.client.Close()
}

func (s *optionSession) key(code string) (optionset.LocalID, error) {
	for _, r := range s.options.Items() {
		if r.Option.Code == code {
			return r.Key, nil
		}
	}
	return "", fmt.Errorf("no option with code %q", code)
}

func openOptions(cmd *cobra.Command, a *app, object, code string) (*optionSession, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	ref, err := findRef(cmd.Context(), c, object, code)
	if err != nil {
		c.Close()
		return nil, err
	}
	if ref.Type != fieldtypes.TypeDropDownList {
		c.Close()
		return nil, fmt.Errorf("%s.%s is a %s, not a drop-down list", object, code, ref.Type)
	}

	field := detail.NewDropDownListEditor(ref, c, detail.Options{Object: object, Notifier: notifier(cmd)})
	s := &optionSession{client: c, field: field}
	if err := field.Load(cmd.Context()); err != nil {
		s.Close()
		return nil, err
	}
	s.options = field.Options()
	switch {
	case s.options == nil:
		s.Close()
		return nil, fmt.Errorf("%s.%s has no value set", object, code)
	case s.options.Err() != nil:
		err := s.options.Err()
		s.Close()
		return nil, err
	}
	return s, nil
}

// mutate opens the option set, applies fn and saves when anything changed.
func mutate(a *app, fn func(s *optionSession, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openOptions(cmd, a, args[0], args[1])
		if err != nil {
			return err
		}
		defer s.Close()
		if err := fn(s, args[2:]); err != nil {
			return err
		}
		if !s.options.HasChanges() {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes")
			return nil
		}
		if err := s.options.Save(cmd.Context()); err != nil {
			return err
		}
		return printOptions(cmd, s.options)
	}
}

func printOptions(cmd *cobra.Command, ed *optionset.Editor) error {
	out := cmd.OutOrStdout()
	if title := ed.Title(); title != "" {
		fmt.Fprintf(out, "Title: %s\n", title)
	}
	fmt.Fprintf(out, "Sorting: %s\n", ed.Sorting())
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tCODE\tLABEL\tDEFAULT")
	for _, r := range ed.Items() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Option.Order, r.Option.Code, r.Option.Label, fieldtypes.FormatBool(r.Option.Default))
	}
	return w.Flush()
}

func newValueSetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "valueset",
		Short: "Show and edit the value set behind a drop-down list field",
	}

	show := &cobra.Command{
		Use:   "show OBJECT FIELD",
		Short: "Print the options of a drop-down list field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openOptions(cmd, a, args[0], args[1])
			if err != nil {
				return err
			}
			defer s.Close()
			return printOptions(cmd, s.options)
		},
	}

	var code string
	add := &cobra.Command{
		Use:   "add OBJECT FIELD LABEL",
		Short: "Append an option; the code defaults to the label",
		Args:  cobra.ExactArgs(3),
		RunE: mutate(a, func(s *optionSession, args []string) error {
			c := code
			if c == "" {
				c = args[0]
			}
			if _, err := s.key(c); err == nil {
				return fmt.Errorf("an option with code %q already exists", c)
			}
			key := s.options.AddRow()
			if err := s.options.SetCell(key, valueset.ColumnLabel, args[0]); err != nil {
				return err
			}
			return s.options.SetCell(key, valueset.ColumnCode, c)
		}),
	}
	add.Flags().StringVar(&code, "code", "", "option code")

	var before string
	move := &cobra.Command{
		Use:   "move OBJECT FIELD CODE",
		Short: "Move an option before another one, or to the end",
		Args:  cobra.ExactArgs(3),
		RunE: mutate(a, func(s *optionSession, args []string) error {
			key, err := s.key(args[0])
			if err != nil {
				return err
			}
			var target optionset.LocalID
			if before != "" {
				if target, err = s.key(before); err != nil {
					return err
				}
			}
			return s.options.MoveKey(key, target)
		}),
	}
	move.Flags().StringVar(&before, "before", "", "code of the option to move in front of (default: move to the end)")

	del := &cobra.Command{
		Use:   "delete OBJECT FIELD CODE",
		Short: "Delete an option",
		Args:  cobra.ExactArgs(3),
		RunE: mutate(a, func(s *optionSession, args []string) error {
			key, err := s.key(args[0])
			if err != nil {
				return err
			}
			return s.options.DeleteRow(key)
		}),
	}

	var off bool
	def := &cobra.Command{
		Use:   "default OBJECT FIELD CODE",
		Short: "Mark an option as a default value",
		Args:  cobra.ExactArgs(3),
		RunE: mutate(a, func(s *optionSession, args []string) error {
			key, err := s.key(args[0])
			if err != nil {
				return err
			}
			return s.options.SetDefault(key, !off)
		}),
	}
	def.Flags().BoolVar(&off, "off", false, "clear the default flag instead")

	cmd.AddCommand(show, add, move, del, def)
	return cmd
}
