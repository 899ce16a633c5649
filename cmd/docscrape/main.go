// Package main provides the entry point for the docscrape CLI.
package main

func main() {
	Execute()
}
