package cmd

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootPage = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /
---
`

// child command without children
const childPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// page is the navigation info of a command's doc page
type page struct {
	root     bool
	title    string
	navOrder int
}

// pages maps the base Markdown file name to its navigation info
var pages = map[string]page{
	"pdb2pqr":             {true, "pdb2pqr", 0},
	"pdb2pqr_run":         {false, "run", 0},
	"pdb2pqr_forcefields": {false, "forcefields", 1},
}

// docsCmd writes Markdown documentation for every command
var docsCmd = &cobra.Command{
	Use:    "docs [dir]",
	Short:  "Write Markdown documentation for the commands",
	Hidden: true,
	Args:   cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "./docs"
		if len(args) > 0 {
			dir = args[0]
		}
		if err := makeDocs(dir); err != nil {
			stderr.Fatalln(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}

// makeDocs parses the commands and outputs Markdown documentation files
func makeDocs(dir string) error {
	RootCmd.DisableAutoGenTag = true
	return doc.GenMarkdownTreeCustom(RootCmd, dir, filePrepender, linkHandler)
}

// filePrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
func filePrepender(filename string) string {
	p, ok := pages[docName(filename)]
	if !ok {
		return ""
	}
	if p.root {
		return fmt.Sprintf(rootPage, p.title, p.navOrder)
	}
	return fmt.Sprintf(childPage, p.title, "pdb2pqr", p.navOrder)
}

// linkHandler returns the URL to a documentation page
func linkHandler(filename string) string {
	if base := docName(filename); base != "pdb2pqr" {
		return base
	}
	return "/"
}

func docName(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, path.Ext(name))
}
