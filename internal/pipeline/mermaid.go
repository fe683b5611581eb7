package pipeline

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMermaidBlock is the node kind of a ```mermaid fence.
var KindMermaidBlock = ast.NewNodeKind("MermaidBlock")

// MermaidBlock holds the diagram source of a mermaid fence.
type MermaidBlock struct {
	ast.BaseBlock
}

// Kind implements ast.Node.
func (n *MermaidBlock) Kind() ast.NodeKind { return KindMermaidBlock }

// IsRaw implements ast.Node.
func (n *MermaidBlock) IsRaw() bool { return true }

// Dump implements ast.Node.
func (n *MermaidBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// mermaidTransformer swaps mermaid fenced code blocks for MermaidBlock nodes
// before the highlighter sees them.
type mermaidTransformer struct{}

func (mermaidTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok && bytes.Equal(fcb.Language(source), []byte("mermaid")) {
			fences = append(fences, fcb)
		}
		return ast.WalkContinue, nil
	})

	for _, fcb := range fences {
		block := &MermaidBlock{}
		block.SetLines(fcb.Lines())
		parent := fcb.Parent()
		parent.ReplaceChild(parent, fcb, block)
	}
}

type mermaidRenderer struct{}

func (mermaidRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMermaidBlock, renderMermaid)
}

func renderMermaid(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<div class="mermaid">`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

// mermaidExtension renders ```mermaid fences as <div class="mermaid">.
type mermaidExtension struct{}

func (mermaidExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(util.Prioritized(mermaidTransformer{}, 100)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(mermaidRenderer{}, 100)))
}
