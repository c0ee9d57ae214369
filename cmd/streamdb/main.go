// filepath: cmd/streamdb/main.go
package main

import "streamdb/internal/cli"

func main() {
	cli.Execute()
}
