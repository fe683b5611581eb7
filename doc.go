// Package mdpreview previews Markdown files as styled HTML on a display
// surface, with print support and a degradation chain for when external
// converters are missing.
//
// # Quick Start
//
//	doc, err := mdpreview.NewFileDocument("README.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	surface := mdpreview.NewRodSurface(mdpreview.WithPDFOutput("README.pdf"))
//	preview := mdpreview.NewPreview(doc, surface, mdpreview.NewChain())
//	defer preview.Close()
//
//	if err := preview.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := preview.Wait(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := preview.Print(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Pipeline
//
// A load runs these steps once per document:
//
//  1. Flavor detection from the file name (gfm, gitlab, mmd)
//  2. Theme resolution from the desktop settings (light unless "dark")
//  3. Conversion through the chain: user converter, system converter,
//     generic converter (pandoc), raw escaped view
//  4. Rendering on the surface, then print stylesheet injection once the
//     surface reports the load finished
//
// Stage failures are logged and fall through to the next stage. Only a
// read failure in the raw stage ends the chain, and the preview then shows
// an error page instead.
//
// # Surfaces
//
// RodSurface drives headless Chrome and prints to PDF. The internal server
// package provides an HTTP surface with live reload. Both implement Surface.
package mdpreview
