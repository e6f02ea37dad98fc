package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"editor-assets/internal/config"
)

func newConfigCmd(a *app, f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the settings stored in ~/.assetsrc",
	}
	cmd.AddCommand(newConfigSetCmd(f), newConfigShowCmd(a))
	return cmd
}

func newConfigSetCmd(f *flags) *cobra.Command {
	var token, editorURL string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Write settings to the rc file",
		Long:  "set stores --api-url, --token, --username, --editor-url and --locale in the rc file. Flags left out keep their stored value.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Update(path, func(c *config.Config) {
				setIf(&c.APIURL, f.apiURL)
				setIf(&c.Token, token)
				setIf(&c.Username, f.username)
				setIf(&c.EditorURL, editorURL)
				setIf(&c.Locale, f.locale)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (api %s)\n", path, cfg.APIURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "API token")
	cmd.Flags().StringVar(&editorURL, "editor-url", "", "editor base URL used for sketch links")
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			token := "(none)"
			if a.cfg.Token != "" {
				token = "(set)"
			}
			fmt.Fprintf(out, "api-url:    %s\n", a.cfg.APIURL)
			fmt.Fprintf(out, "editor-url: %s\n", a.cfg.EditorURL)
			fmt.Fprintf(out, "username:   %s\n", a.cfg.Username)
			fmt.Fprintf(out, "locale:     %s\n", a.tr.Locale())
			fmt.Fprintf(out, "token:      %s\n", token)
		},
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
