package main

import "bank-host-api/cmd/atm/cmd"

func main() {
	cmd.Execute()
}
