package main

import "github.com/frahmantamala/exeat-management/cmd"

func main() {
	cmd.Execute()
}
