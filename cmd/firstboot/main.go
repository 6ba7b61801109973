package main

import "firstboot/cmd/firstboot/cmd"

func main() {
	cmd.Execute()
}
