// Package assets provides the stylesheets and HTML template of the companion
// converter's standalone documents.
//
// Assets come from layered sources. The embedded source is compiled into the
// binary; a directory passed to NewAssetResolver is consulted first and may
// override any single file:
//
//	{dir}/
//	├── styles/
//	│   ├── converter.css        # light palette and layout
//	│   └── converter-dark.css   # dark palette, layered on converter.css
//	└── templates/
//	    └── document.html        # html/template for the full page
//
// Directory reads go through os.Root, so neither names nor symlinks can
// reach files outside the directory.
package assets
