package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"editor-assets/internal/store"
	"editor-assets/internal/ui"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print your uploaded assets as a table",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.GetAssets(cmd.Context()); err != nil {
				return err
			}
			st := a.store.Snapshot()
			out := cmd.OutOrStdout()
			if len(st.Assets.List) == 0 {
				fmt.Fprintln(out, a.tr.T("AssetList.NoUploadedAssets"))
				return nil
			}
			fmt.Fprintln(out, ui.PlainTable(a.listHeaders(), listRows(st.Assets.List)))
			fmt.Fprintln(out, a.tr.T("AssetList.TotalSize", humanize.Bytes(uint64(max(st.Assets.TotalSize, 0)))))
			return nil
		},
	}
}

func (a *app) listHeaders() []string {
	return []string{
		a.tr.T("AssetList.HeaderName"),
		a.tr.T("AssetList.HeaderSize"),
		a.tr.T("AssetList.HeaderSketch"),
		"Key",
	}
}

func listRows(assets []store.Asset) [][]string {
	rows := make([][]string, 0, len(assets))
	for _, as := range assets {
		rows = append(rows, []string{as.Name, humanize.Bytes(uint64(max(as.Size, 0))), as.SketchName, as.Key})
	}
	return rows
}
