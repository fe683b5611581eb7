package main

import (
	"context"
	"fmt"
	"io"
	"os"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/hints"
)

// runHTML converts one markdown file and writes the page to stdout or -o.
func runHTML(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseCommandFlags("html", args)
	if err != nil {
		return err
	}
	path, err := singleFile("html", rest)
	if err != nil {
		return err
	}
	a, err := newApp(f, env)
	if err != nil {
		return err
	}

	res, err := a.convert(ctx, path)
	if err != nil {
		return a.withHints(err)
	}

	if f.output == "" {
		_, err := io.WriteString(env.Stdout, res.HTML)
		return err
	}
	if err := os.WriteFile(f.output, []byte(res.HTML), 0o644); err != nil { // #nosec G306 -- HTML output is meant to be readable
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	a.logger.Info("wrote html", "path", f.output, "stage", res.Stage.String(), "duration", res.Duration)
	return nil
}

// convert runs the chain once for path with the resolved theme and flavor.
func (a *app) convert(ctx context.Context, path string) (*mdpreview.Result, error) {
	doc, err := mdpreview.NewFileDocument(path)
	if err != nil {
		return nil, err
	}

	flavor := a.flavor
	if flavor == "" {
		flavor = mdpreview.DetectFlavor(doc.Basename())
	}
	req := mdpreview.Request{
		Path:   doc.Path(),
		Theme:  a.themes().Resolve(ctx),
		Flavor: flavor,
	}

	res, err := a.chain().Convert(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.Stage == mdpreview.StageRaw {
		a.logger.Warn("no converter produced HTML, showing plain text",
			"path", req.Path, "hint", hints.ForConverterMissing(a.cfg.Converters.User, a.cfg.Converters.System))
	}
	return res, nil
}
