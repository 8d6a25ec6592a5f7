package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/agentcatalog/internal/codegen"
	"github.com/user/agentcatalog/internal/schema"
)

func newGenerateCmd() *cobra.Command {
	var (
		framework string
		variant   string
		escape    bool
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "generate <slug>",
		Short: "Render starter code for a template in a framework",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			frameworks, err := loadFrameworks()
			if err != nil {
				return err
			}

			t := reg.BySlug(args[0])
			if t == nil {
				return fmt.Errorf("template %q not found", args[0])
			}
			fw := frameworks.Framework(framework)
			if fw == nil {
				return fmt.Errorf("unknown framework %q (available: %s)", framework, strings.Join(frameworks.IDs(), ", "))
			}
			tmpl := fw.Template(variant)
			if tmpl == nil {
				return fmt.Errorf("framework %q has no template %q", framework, variant)
			}

			var opts []codegen.Option
			if escape {
				opts = append(opts, codegen.WithEscape(codegen.EscapeStringLiteral))
			}
			code, ok := codegen.Generate(t, fw, tmpl, opts...)
			if !ok {
				return fmt.Errorf("nothing to generate for %q", args[0])
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n# %s\n", code.FileName, code.Dependencies)
			if outFile == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), code.Code)
				return err
			}
			return os.WriteFile(outFile, []byte(code.Code), 0o644)
		},
	}
	cmd.Flags().StringVarP(&framework, "framework", "f", "langchain", "Framework id")
	cmd.Flags().StringVarP(&variant, "template", "t", "", "Framework template id (default first)")
	cmd.Flags().BoolVar(&escape, "escape", false, "Escape values as string literals")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write code to a file instead of stdout")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for agent template files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.JSON()
			if err != nil {
				return err
			}
			if outFile != "" {
				return os.WriteFile(outFile, data, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the schema to a file")
	return cmd
}

func newFrameworksCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "frameworks",
		Short: "List configured code generation frameworks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			frameworks, err := loadFrameworks()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(frameworks)
			}
			for _, fw := range frameworks.Frameworks {
				fmt.Fprintf(out, "%s (%s, %s)\n", fw.ID, fw.DisplayName, fw.Language)
				for _, v := range fw.Templates {
					fmt.Fprintf(out, "    %-16s %s  %s\n", v.ID, v.FileName, v.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}
