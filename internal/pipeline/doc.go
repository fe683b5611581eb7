// Package pipeline implements the HTML stages shared by the previewer and the
// companion converter.
//
// Previewer side:
//   - style block injection into converter output (after <head>, before the
//     first <style>, or prepended)
//   - <base href> injection so relative links resolve against the document
//   - snippet injection before </body> for served pages
//
// Converter side:
//   - Markdown to HTML via goldmark, one extension set per flavor
//   - chroma syntax highlighting with inline styles
//   - mermaid fences rendered as <div class="mermaid">
//   - @mention, #issue and !merge-request linking in text nodes
//   - standalone document assembly from the embedded template
package pipeline
