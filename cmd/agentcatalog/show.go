package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func newShowCmd() *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Print one template as JSON",
		Long: `Show prints the parsed template record as JSON. --field selects a single
value with a gjson path such as identity.tags or tools.required_tools.#.name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			t := reg.BySlug(args[0])
			if t == nil {
				return fmt.Errorf("template %q not found", args[0])
			}
			data, err := json.MarshalIndent(t, "", "  ")
			if err != nil {
				return err
			}
			return writeField(cmd.OutOrStdout(), data, field)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "gjson path of a single field to print")
	return cmd
}

func writeField(out io.Writer, data []byte, field string) error {
	if field == "" {
		_, err := fmt.Fprintln(out, string(data))
		return err
	}
	res := gjson.GetBytes(data, field)
	if !res.Exists() {
		return fmt.Errorf("field %q not found", field)
	}
	_, err := fmt.Fprintln(out, res.String())
	return err
}

func newRawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raw <slug>",
		Short: "Print the authored YAML of a template exactly as written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			raw, ok := reg.RawSource(args[0])
			if !ok {
				return fmt.Errorf("template %q not found", args[0])
			}
			_, err = io.WriteString(cmd.OutOrStdout(), raw)
			return err
		},
	}
}
