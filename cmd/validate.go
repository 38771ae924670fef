package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lexikit/wordforge/internal/domain"
	"github.com/lexikit/wordforge/internal/validate"
)

// maxIssuesShown caps per-file issue output.
const maxIssuesShown = 20

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check wordlist artifacts for quality issues",
	Long: "Validates artifact files: metadata, duplicate headwords, missing " +
		"translations and phonetics, and example completeness. Exits non-zero " +
		"if any artifact has issues.",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		paths := args
		if all {
			found, err := findArtifacts(cfg.Output.Dir)
			if err != nil {
				return err
			}
			paths = found
		}
		if len(paths) == 0 {
			return eris.New("no artifacts given; pass file paths or --all")
		}

		reports, err := checkArtifacts(paths)
		if err != nil {
			return err
		}

		failed := 0
		for _, rep := range reports {
			printReport(rep)
			if !rep.Valid() {
				failed++
			}
		}
		if failed > 0 {
			return eris.Errorf("%d of %d artifacts have issues", failed, len(reports))
		}
		fmt.Printf("All %d artifacts passed validation.\n", len(reports))
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("all", false, "validate every artifact in the output directory")
	rootCmd.AddCommand(validateCmd)
}

// checkArtifacts validates the files concurrently, a few at a time.
func checkArtifacts(paths []string) ([]validate.Report, error) {
	reports := make([]validate.Report, len(paths))
	var g errgroup.Group
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			rep, err := validate.CheckArtifact(path, schemaForArtifact(path))
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func findArtifacts(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "walk output dir %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

var (
	schemaByOutputOnce sync.Once
	schemaByOutput     map[string]validate.Schema
)

// schemaForArtifact picks the completeness schema by matching the file
// name against the catalog's output names. Unknown files get the
// default schema without the phonetic requirement.
func schemaForArtifact(path string) validate.Schema {
	schemaByOutputOnce.Do(func() {
		schemaByOutput = make(map[string]validate.Schema)
		levels, err := domain.Catalog()
		if err != nil {
			return
		}
		for _, l := range levels {
			schemaByOutput[filepath.Base(l.Output)] = validate.SchemaFor(l.Exam)
		}
	})
	if s, ok := schemaByOutput[filepath.Base(path)]; ok {
		return s
	}
	return validate.Schema{MinExamples: 2}
}

func printReport(rep validate.Report) {
	status := "[OK]"
	if !rep.Valid() {
		status = "[FAIL]"
	}
	fmt.Fprintf(os.Stdout, "%s %s: %d words, %d unique, %d issues\n",
		status, filepath.Base(rep.Path), rep.TotalWords, rep.UniqueWords, len(rep.Issues))

	shown := rep.Issues
	if len(shown) > maxIssuesShown {
		shown = shown[:maxIssuesShown]
	}
	for _, issue := range shown {
		fmt.Fprintf(os.Stdout, "  - %s\n", issue)
	}
	if rest := len(rep.Issues) - len(shown); rest > 0 {
		fmt.Fprintf(os.Stdout, "  ... and %d more issues\n", rest)
	}
}
