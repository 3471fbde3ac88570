// Package main implements the japps CLI tool.
// It manages apps on the hub and runs the app management service.
package main

import "apphub/cmd/japps/cmd"

func main() {
	cmd.Execute()
}
