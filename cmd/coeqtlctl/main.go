package main

import "github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/cli"

func main() {
	cli.Execute()
}
