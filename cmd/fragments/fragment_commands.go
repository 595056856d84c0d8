package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fragments/internal/actions"
	"fragments/internal/fragments"
	"fragments/internal/mediatype"
	"fragments/internal/view"
)

func newFragmentCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newListCommand(ctx),
		newShowCommand(ctx),
		newInfoCommand(ctx),
		newCreateCommand(ctx),
		newUpdateCommand(ctx),
		newDeleteCommand(ctx),
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON, idsOnly, wide bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your fragments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withActions(func(a *actions.Actions) error {
				if idsOnly {
					ids, err := a.ListIDs(cmd.Context())
					if err != nil {
						return err
					}
					if asJSON {
						return view.RenderJSON(cmd.OutOrStdout(), ids)
					}
					for _, id := range ids {
						printf(cmd, "%s\n", id)
					}
					return nil
				}
				list, items, err := a.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return view.RenderJSON(cmd.OutOrStdout(), items)
				}
				return view.RenderFragmentList(cmd.OutOrStdout(), list, view.ListOptions{Wide: wide})
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "List fragment ids only")
	cmd.Flags().BoolVarP(&wide, "wide", "w", false, "Include updated time and owner columns")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a fragment's metadata and content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withActions(func(a *actions.Actions) error {
				detail, err := a.Show(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return view.RenderFragmentDetail(cmd.OutOrStdout(), detail)
			})
		},
	}
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <id>",
		Short: "Show a fragment's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withActions(func(a *actions.Actions) error {
				info, err := a.Info(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return view.RenderJSON(cmd.OutOrStdout(), info)
				}
				if err := view.RenderFragmentDetail(cmd.OutOrStdout(), view.NewFragmentDetail(*info, nil)); err != nil {
					return err
				}
				if targets := mediatype.AllowedTargets(info.Type); len(targets) > 0 {
					printf(cmd, "Converts: %s\n", strings.Join(targets, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

type contentFlags struct {
	file string
	text string
}

func (f *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read content from a file (\"-\" for stdin)")
	cmd.Flags().StringVarP(&f.text, "text", "t", "", "Content given inline")
	cmd.MarkFlagsMutuallyExclusive("file", "text")
}

// resolveText returns inline text, or stdin when neither flag was given.
func (f *contentFlags) resolveText(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("text") {
		return f.text, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var contentType string
	var asJSON bool
	var content contentFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a fragment",
		Long: "Create a fragment from --text, --file or stdin. --type is required for\n" +
			"text input and inferred from the file extension otherwise.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withActions(func(a *actions.Actions) error {
				var created *fragments.Fragment
				var err error
				if content.file != "" {
					picker := pathPicker{path: content.file, stdin: cmd.InOrStdin()}
					created, err = a.CreateFromFile(cmd.Context(), contentType, picker)
				} else {
					if strings.TrimSpace(contentType) == "" {
						return usageError("create", "--type is required unless --file is given")
					}
					var text string
					if text, err = content.resolveText(cmd); err != nil {
						return err
					}
					created, err = a.CreateFromText(cmd.Context(), contentType, text)
				}
				if err != nil {
					return err
				}
				if asJSON {
					return view.RenderJSON(cmd.OutOrStdout(), created)
				}
				printf(cmd, "Created fragment %s (%s, %s)\n", created.ID, created.Type, view.FormatSize(created.Size))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&contentType, "type", "", "Fragment content type (see `fragments types`)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	content.register(cmd)
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var content contentFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a fragment's content, keeping its type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withActions(func(a *actions.Actions) error {
				var updated *fragments.Fragment
				var err error
				if content.file != "" {
					picker := pathPicker{path: content.file, stdin: cmd.InOrStdin()}
					updated, err = a.UpdateFromFile(cmd.Context(), args[0], picker)
				} else {
					var text string
					if text, err = content.resolveText(cmd); err != nil {
						return err
					}
					updated, err = a.UpdateFromText(cmd.Context(), args[0], text)
				}
				if err != nil {
					return err
				}
				if asJSON {
					return view.RenderJSON(cmd.OutOrStdout(), updated)
				}
				printf(cmd, "Updated fragment %s (%s)\n", updated.ID, view.FormatSize(updated.Size))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	content.register(cmd)
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a fragment",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withActions(func(a *actions.Actions) error {
				if err := a.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printf(cmd, "Deleted fragment %s\n", args[0])
				return nil
			})
		},
	}
}
