package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lexikit/wordforge/internal/fetcher"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [dataset...]",
	Short: "Download the upstream source datasets",
	Long:  "Fetches the open vocabulary datasets into the source data directory. With no arguments every dataset is fetched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		datasets, err := selectDatasets(args)
		if err != nil {
			return err
		}

		f := fetcher.New(fetcher.Options{
			RequestsPerMinute: cfg.Fetch.RequestsPerMinute,
			Timeout:           time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		})

		for _, d := range datasets {
			dest := filepath.Join(cfg.Source.Dir, d.Path)
			zap.L().Info("fetching dataset",
				zap.String("dataset", d.Name),
				zap.String("url", d.URL))

			n, err := f.DownloadToFile(ctx, d.URL, dest)
			if err != nil {
				return eris.Wrapf(err, "fetch %s", d.Name)
			}
			fmt.Printf("%s: %d bytes -> %s\n", d.Name, n, dest)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func selectDatasets(names []string) ([]fetcher.Dataset, error) {
	all := fetcher.Datasets()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]fetcher.Dataset, len(all))
	for _, d := range all {
		byName[d.Name] = d
	}
	selected := make([]fetcher.Dataset, 0, len(names))
	for _, name := range names {
		d, ok := byName[name]
		if !ok {
			return nil, eris.Errorf("unknown dataset %q; known: %s", name, datasetNames(all))
		}
		selected = append(selected, d)
	}
	return selected, nil
}

func datasetNames(datasets []fetcher.Dataset) string {
	out := ""
	for i, d := range datasets {
		if i > 0 {
			out += ", "
		}
		out += d.Name
	}
	return out
}
