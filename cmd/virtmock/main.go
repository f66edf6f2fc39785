// virtmock CLI - command-line interface for the virtmock server
package main

import (
	"github.com/virtmock/virtmock/pkg/cli"
)

func main() {
	cli.Execute()
}
