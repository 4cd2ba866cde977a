package main

import (
	"fmt"
	"strings"

	"github.com/claudehenchoz/gensi"
	gensibluemonday "github.com/claudehenchoz/gensi/bluemonday"
	"github.com/claudehenchoz/gensi/bluesky"
	"github.com/claudehenchoz/gensi/epub"
	"github.com/claudehenchoz/gensi/goja"
	gensigoquery "github.com/claudehenchoz/gensi/goquery"
	gensihttp "github.com/claudehenchoz/gensi/http"
	"github.com/claudehenchoz/gensi/process"
	"github.com/claudehenchoz/gensi/resolve"
	gensislog "github.com/claudehenchoz/gensi/slog"
	"github.com/claudehenchoz/gensi/yaml"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	progress := func(ev gensi.Progress) {
		switch ev.Stage {
		case gensi.StageParsing:
			fmt.Fprintf(deps.Stderr, "parsing %s\n", ev.Message)
		case gensi.StageCover:
			fmt.Fprintf(deps.Stderr, "cover: %s\n", ev.Message)
		case gensi.StageIndex:
			fmt.Fprintf(deps.Stderr, "index %d/%d: %s\n", ev.Current, ev.Total, ev.Message)
		case gensi.StageArticle:
			fmt.Fprintf(deps.Stderr, "article %d/%d: %s\n", ev.Current, ev.Total, ev.Message)
		case gensi.StageBuilding:
			fmt.Fprintf(deps.Stderr, "building %s\n", ev.Message)
		case gensi.StageError:
			fmt.Fprintf(deps.Stderr, "error: %s\n", ev.Message)
		}
	}

	progress(gensi.Progress{Stage: gensi.StageParsing, Message: c.Recipe})
	recipe, err := yaml.ParseRecipeFile(c.Recipe)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", gensi.ErrorMessage(err))
		return err
	}

	outPath := c.Out
	if outPath == "" {
		outPath = safeFilename(recipe.Title) + ".epub"
	}

	var fetcher gensi.Fetcher = gensihttp.NewFetcher(
		gensihttp.WithTimeout(c.Timeout),
		gensihttp.WithLimiter(gensihttp.NewDomainLimiter(2.0)),
	)
	fetcher = gensihttp.NewRetryingFetcher(fetcher)
	fetcher = gensislog.NewLoggingFetcher(fetcher, deps.Logger)
	if !c.NoCache && deps.Cache != nil {
		fetcher = gensihttp.NewCachedFetcher(fetcher, deps.Cache)
	}

	scripts := goja.NewRunner()
	engine := gensigoquery.NewEngine(scripts)

	processor := &process.Processor{
		Fetcher:     fetcher,
		Resolver:    resolve.NewResolver(fetcher, engine, scripts, bluesky.NewResolver(fetcher, scripts)),
		Engine:      engine,
		Scripts:     scripts,
		Builder:     epub.NewBuilder(),
		Sanitizer:   gensibluemonday.NewSanitizer(),
		Concurrency: c.Parallel,
		Logger:      deps.Logger,
	}

	if err := processor.Run(deps.Ctx, recipe, outPath, progress); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Wrote %s\n", outPath)
	return nil
}

// safeFilename turns a recipe title into a usable file name.
func safeFilename(title string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "", "?", "", "\"", "", "<", "", ">", "", "|", "")
	name := strings.TrimSpace(replacer.Replace(title))
	if name == "" {
		return "gensi"
	}
	return name
}
