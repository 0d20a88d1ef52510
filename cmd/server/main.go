package main

import "github.com/yukikurage/project-management-api/internal/cli"

func main() {
	cli.Execute()
}
