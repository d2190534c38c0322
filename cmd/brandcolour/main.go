// brandcolour derives a booking widget colour scheme from a company logo.
//
// It runs as a CLI for one-off extraction and file watching, or as the HTTP
// API behind the branding settings page.
package main

import "github.com/serviceplanpro/brandcolour/internal/cli"

func main() {
	cli.Execute()
}
