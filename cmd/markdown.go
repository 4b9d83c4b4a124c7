package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// printMarkdown renders markdown for the terminal. The raw markdown is
// printed when it cannot be rendered.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// writeHTML converts markdown to an HTML fragment, tables included.
func writeHTML(w io.Writer, md string) error {
	return goldmark.New(goldmark.WithExtensions(extension.Table)).Convert([]byte(md), w)
}

// output writes markdown to stdout, as HTML when html is set.
func output(md string, html bool) error {
	if html {
		return writeHTML(os.Stdout, md)
	}
	printMarkdown(md)
	return nil
}
