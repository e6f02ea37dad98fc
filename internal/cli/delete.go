package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"editor-assets/internal/store"
)

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete one uploaded asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			ctx := cmd.Context()
			if err := a.store.GetAssets(ctx); err != nil {
				return err
			}
			asset, ok := findAsset(a.store.Snapshot().Assets.List, key)
			if !ok {
				return fmt.Errorf("asset %q not found", key)
			}

			if !yes {
				confirmed, err := a.confirm(asset.Name)
				if err != nil {
					return err
				}
				if !confirmed {
					return nil
				}
			}

			if err := a.store.DeleteAssetRequest(ctx, key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.tr.T("AssetList.Deleted", asset.Name))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) confirm(name string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(a.tr.T("Common.DeleteConfirmation", name)).
				Affirmative(a.tr.T("AssetList.Delete")).
				Negative(a.tr.T("Common.Cancel")).
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}

func findAsset(list []store.Asset, key string) (store.Asset, bool) {
	for _, as := range list {
		if as.Key == key {
			return as, true
		}
	}
	return store.Asset{}, false
}
