/*
Copyright © 2025 TaskScout Authors
*/
package main

import "github.com/taskscout/taskscout/cmd"

func main() {
	cmd.Execute()
}
