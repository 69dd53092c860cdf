// Command detecttest runs build detection on a screenshot and prints the
// detected entities.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/disintegration/imaging"

	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
	"github.com/jtn0123/MegaBonk-sub002/internal/detect"
	"github.com/jtn0123/MegaBonk-sub002/internal/match"
	"github.com/jtn0123/MegaBonk-sub002/internal/ocr"
	"github.com/jtn0123/MegaBonk-sub002/internal/overlay"
	"github.com/jtn0123/MegaBonk-sub002/internal/project"
	"github.com/jtn0123/MegaBonk-sub002/internal/resolution"
	"github.com/jtn0123/MegaBonk-sub002/internal/screenshot"
	"github.com/jtn0123/MegaBonk-sub002/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to screenshot (PNG, JPEG, or TIFF)")
	catalogPath := flag.String("catalog", "catalog.json", "Path to entity catalog JSON")
	templateDir := flag.String("templates", "templates", "Directory of reference images (<entityID>.png)")
	strategyName := flag.String("strategy", "", "Detection strategy preset")
	projectPath := flag.String("project", "", "Workspace file (.bonkproj) supplying paths and settings")
	annotatePath := flag.String("annotate", "", "Write an annotated copy of the screenshot to this path")
	useOCR := flag.Bool("ocr", false, "Enable the Tesseract OCR fallback")
	debug := flag.Bool("debug", false, "Verbose diagnostics")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("detecttest %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: detecttest -image <path> [-project run.bonkproj] [-catalog catalog.json] [-templates dir] [-strategy current] [-annotate out.png]")
		os.Exit(1)
	}

	var proj *project.File
	if *projectPath != "" {
		var err error
		proj, err = project.Load(*projectPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load workspace: %v\n", err)
			os.Exit(1)
		}
		if p := proj.GetCatalogPath(*projectPath); p != "" {
			*catalogPath = p
		}
		if p := proj.GetTemplateDir(*projectPath); p != "" {
			*templateDir = p
		}
		if *strategyName == "" {
			*strategyName = proj.Settings.Strategy
		}
		if proj.Settings.OCRFallback {
			*useOCR = true
		}
	}
	if *strategyName == "" {
		*strategyName = "current"
	}

	cat, err := catalog.LoadFromFile(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded catalog with %d entities\n", cat.Len())

	shot, err := screenshot.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load screenshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded screenshot %dx%d (hash %s)\n", shot.Width(), shot.Height(), shot.Hash())

	opts := detect.Options{
		Catalog: cat,
		Scorer:  match.NewGocvScorer(),
		Debug:   *debug,
	}
	if *useOCR {
		extractor, err := ocr.NewTesseractExtractor()
		if err != nil {
			fmt.Fprintf(os.Stderr, "OCR unavailable, continuing without fallback: %v\n", err)
		} else {
			defer extractor.Close()
			opts.Extractor = extractor
		}
	}

	ctx := detect.NewContext(opts)
	if err := ctx.SetActiveStrategyName(*strategyName); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if proj != nil {
		loadFeedback(ctx, proj.GetFeedbackPath(*projectPath))
	}

	iconSize := resolution.Detect(shot.Width(), shot.Height()).IconSize
	for _, kind := range []catalog.Kind{catalog.KindItem, catalog.KindWeapon, catalog.KindTome, catalog.KindCharacter} {
		templates, err := match.LoadTemplates(cat, kind, *templateDir, iconSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load %s templates: %v\n", kind, err)
			os.Exit(1)
		}
		ctx.RegisterTemplates(kind, templates)
	}

	result, err := ctx.DetectBuild(shot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nProfile: %s (scale %.3f)\n",
		result.Regions.Geometry.Profile.Name, result.Regions.Geometry.Scale)
	for _, issue := range result.Issues {
		fmt.Printf("Layout warning: %s\n", issue)
	}

	fmt.Printf("\nDetected %d entities:\n", len(result.Matches))
	for _, m := range result.Matches {
		via := ""
		if m.ViaOCR {
			via = " (ocr)"
		}
		fmt.Printf("  %-10s slot %2d: %-24s conf %.3f pass %d%s\n",
			m.Kind, m.Slot.Index, m.EntityName, m.Confidence, m.Pass, via)
	}

	fmt.Printf("\nRun took %v (match rate %.2f, mean confidence %.3f)\n",
		result.Metrics.TotalTime, result.Metrics.MatchRate, result.Metrics.MeanConfidence)

	if *annotatePath != "" {
		annotated := overlay.Render(shot, result, overlay.DefaultRenderOptions())
		if err := imaging.Save(annotated, *annotatePath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save annotated screenshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Annotated screenshot written to %s\n", *annotatePath)
	}
}

// loadFeedback restores the workspace's correction log if one exists.
func loadFeedback(ctx *detect.DetectionContext, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Failed to read correction log: %v\n", err)
		}
		return
	}
	n, err := ctx.Feedback().ImportJSON(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to import correction log: %v\n", err)
		return
	}
	fmt.Printf("Imported %d corrections from %s\n", n, path)
}
