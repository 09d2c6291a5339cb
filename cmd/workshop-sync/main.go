package main

import "github.com/Moontok/WorkshopApp/internal/cli"

func main() {
	cli.Execute()
}
