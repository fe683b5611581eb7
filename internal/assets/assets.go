package assets

var builtin = NewEmbeddedLoader()

// LoadStyle loads a built-in stylesheet.
func LoadStyle(name string) (string, error) {
	return builtin.LoadStyle(name)
}

// LoadTemplate loads a built-in template.
func LoadTemplate(name string) (string, error) {
	return builtin.LoadTemplate(name)
}

// ThemeStyles returns the stylesheets for a theme, in cascade order.
// Dark layers converter-dark.css over the light base.
func ThemeStyles(loader AssetLoader, dark bool) (string, error) {
	css, err := loader.LoadStyle(StyleConverter)
	if err != nil || !dark {
		return css, err
	}
	darkCSS, err := loader.LoadStyle(StyleConverterDark)
	if err != nil {
		return "", err
	}
	return css + "\n" + darkCSS, nil
}
