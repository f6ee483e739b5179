package main

import "github.com/vibast-solutions/ms-go-billing-ledger/cmd"

func main() {
	cmd.Execute()
}
