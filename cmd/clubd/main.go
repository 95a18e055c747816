package main

import "github.com/Atif-Muhammad/psc-portal-sub000/internal/cli"

func main() {
	cli.Execute()
}
