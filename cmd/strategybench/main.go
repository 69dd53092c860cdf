// Command strategybench runs every strategy preset over one screenshot
// and prints the comparison report.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
	"github.com/jtn0123/MegaBonk-sub002/internal/detect"
	"github.com/jtn0123/MegaBonk-sub002/internal/match"
	"github.com/jtn0123/MegaBonk-sub002/internal/resolution"
	"github.com/jtn0123/MegaBonk-sub002/internal/screenshot"
	"github.com/jtn0123/MegaBonk-sub002/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to screenshot (PNG, JPEG, or TIFF)")
	catalogPath := flag.String("catalog", "catalog.json", "Path to entity catalog JSON")
	templateDir := flag.String("templates", "templates", "Directory of reference images (<entityID>.png)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("strategybench %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: strategybench -image <path> [-catalog catalog.json] [-templates dir]")
		os.Exit(1)
	}

	cat, err := catalog.LoadFromFile(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	shot, err := screenshot.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load screenshot: %v\n", err)
		os.Exit(1)
	}

	ctx := detect.NewContext(detect.Options{
		Catalog: cat,
		Scorer:  match.NewGocvScorer(),
	})

	iconSize := resolution.Detect(shot.Width(), shot.Height()).IconSize
	for _, kind := range []catalog.Kind{catalog.KindItem, catalog.KindWeapon, catalog.KindTome, catalog.KindCharacter} {
		templates, err := match.LoadTemplates(cat, kind, *templateDir, iconSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load %s templates: %v\n", kind, err)
			os.Exit(1)
		}
		ctx.RegisterTemplates(kind, templates)
	}

	names := []string{"fast", "balanced", "accurate", "current"}
	for _, name := range names {
		if err := ctx.SetActiveStrategyName(name); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		result, err := ctx.DetectBuild(shot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Detection under %q failed: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("[Bench] %s: %d detections in %v\n",
			name, len(result.Matches), result.Metrics.TotalTime)
	}

	cmp, err := ctx.CompareStrategies(names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Comparison failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(cmp.Report())
}
