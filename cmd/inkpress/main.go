// cmd/inkpress/main.go
//
// Entry point for the inkpress CLI. All command wiring lives in
// internal/cli; this binary just hands off to it.

package main

import "github.com/inkpress-dev/inkpress/internal/cli"

func main() {
	cli.Execute()
}
