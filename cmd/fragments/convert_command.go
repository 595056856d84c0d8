package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fragments/internal/actions"
	"fragments/internal/mediatype"
	"fragments/internal/view"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var target, output string
	var dataURL bool

	cmd := &cobra.Command{
		Use:   "convert <id>",
		Short: "Fetch a fragment converted to another type",
		Long: "Fetch a fragment converted to another type. --to accepts a media type\n" +
			"(text/html) or an extension (html, .html).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetType := resolveTarget(target)
			if targetType == "" {
				return usageError("convert", fmt.Sprintf("unknown target %q", target))
			}
			return ctx.withActions(func(a *actions.Actions) error {
				converted, err := a.Convert(cmd.Context(), args[0], targetType)
				if err != nil {
					return err
				}
				if output != "" {
					data := []byte(converted.Text)
					if converted.Blob != nil {
						data = converted.Blob.Data
					}
					if err := os.WriteFile(output, data, 0o644); err != nil {
						return fmt.Errorf("write %s: %w", output, err)
					}
					printf(cmd, "Wrote %s (%s) to %s\n", converted.Type, view.FormatSize(int64(len(data))), output)
					return nil
				}
				if dataURL && converted.Blob != nil {
					printf(cmd, "%s\n", converted.Blob.DataURL())
					return nil
				}
				return view.RenderConversion(cmd.OutOrStdout(), converted)
			})
		},
	}

	cmd.Flags().StringVar(&target, "to", "", "Target media type or extension")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the converted content to a file")
	cmd.Flags().BoolVar(&dataURL, "data-url", false, "Print image results as a data: URL")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func resolveTarget(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.Contains(value, "/") {
		return mediatype.Normalize(value)
	}
	if !strings.HasPrefix(value, ".") {
		value = "." + value
	}
	return mediatype.TypeForExtension(value)
}

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "types",
		Short:       "List supported fragment types and their conversions",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return view.RenderTypes(cmd.OutOrStdout())
		},
	}
}
